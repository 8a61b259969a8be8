package main

import (
	"strings"

	"github.com/nasdf/filex/core"
	"github.com/nasdf/filex/http"
	"github.com/nasdf/filex/request"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// run executes the request built from the command arguments and prints the result.
func (a *app) run(build func(args []string) (request.Request, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		req, err := build(args)
		if err != nil {
			return err
		}
		res, err := request.Execute(cmd.Context(), a.db, req)
		if err != nil {
			return err
		}
		if res == nil {
			return nil
		}
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	}
}

func collectionsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List the collections in the database",
		Args:  cobra.NoArgs,
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.ListCollections}, nil
		}),
	}
}

func countCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count <collection>",
		Short: "Count the documents in a collection",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.Count, Collection: args[0]}, nil
		}),
	}
}

func findCommand(a *app) *cobra.Command {
	var (
		sortField string
		sortOrder string
		limit     []int
	)
	cmd := &cobra.Command{
		Use:   "find <collection> [query]",
		Short: "Find all documents matching a query",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(args []string) (request.Request, error) {
			req := request.Request{Operation: request.Find, Collection: args[0]}
			if len(args) > 1 {
				query, err := parseObject(args[1])
				if err != nil {
					return req, errors.Wrap(err, "query")
				}
				req.Query = query
			}
			if sortField != "" {
				req.Sort = &core.Sort{Field: sortField, Order: core.Order(sortOrder)}
			}
			if limit != nil {
				if len(limit) != 2 {
					return req, errors.New("limit must be start,end")
				}
				req.Limit = &core.Limit{Start: limit[0], End: limit[1]}
			}
			return req, nil
		}),
	}
	cmd.Flags().StringVar(&sortField, "sort", "", "field to sort by")
	cmd.Flags().StringVar(&sortOrder, "order", string(core.Ascending), "sort order, asc or desc")
	cmd.Flags().IntSliceVar(&limit, "limit", nil, "result range as start,end")
	return cmd
}

func findOneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find-one <collection> <query>",
		Short: "Find the first document matching a query",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			query, err := parseObject(args[1])
			if err != nil {
				return request.Request{}, errors.Wrap(err, "query")
			}
			return request.Request{Operation: request.FindOne, Collection: args[0], Query: query}, nil
		}),
	}
}

func findByIDCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find-by-id <collection> <id>",
		Short: "Find the document with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.FindByID, Collection: args[0], ID: parseID(args[1])}, nil
		}),
	}
}

func insertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <collection> <document>",
		Short: "Insert a document",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			doc, err := parseObject(args[1])
			if err != nil {
				return request.Request{}, errors.Wrap(err, "document")
			}
			return request.Request{Operation: request.InsertOne, Collection: args[0], Document: doc}, nil
		}),
	}
}

func insertManyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert-many <collection> <documents>",
		Short: "Insert a JSON array of documents",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			var docs []map[string]any
			if err := decodeJSON(args[1], &docs); err != nil {
				return request.Request{}, errors.Wrap(err, "documents")
			}
			return request.Request{Operation: request.InsertMany, Collection: args[0], Documents: docs}, nil
		}),
	}
}

func updateCommand(a *app) *cobra.Command {
	var returnNew bool
	cmd := &cobra.Command{
		Use:   "update <collection> <query> <payload>",
		Short: "Update the first document matching a query",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(args []string) (request.Request, error) {
			return updateRequest(request.UpdateOne, args, returnNew)
		}),
	}
	cmd.Flags().BoolVar(&returnNew, "new", false, "print the updated document instead of the original")
	return cmd
}

func updateManyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "update-many <collection> <query> <payload>",
		Short: "Update all documents matching a query",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(args []string) (request.Request, error) {
			return updateRequest(request.UpdateMany, args, false)
		}),
	}
}

func updateByIDCommand(a *app) *cobra.Command {
	var returnNew bool
	cmd := &cobra.Command{
		Use:   "update-by-id <collection> <id> <payload>",
		Short: "Update the document with the given id",
		Args:  cobra.ExactArgs(3),
		RunE: a.run(func(args []string) (request.Request, error) {
			payload, err := parseObject(args[2])
			if err != nil {
				return request.Request{}, errors.Wrap(err, "payload")
			}
			return request.Request{
				Operation:  request.FindByIDAndUpdate,
				Collection: args[0],
				ID:         parseID(args[1]),
				Payload:    payload,
				New:        returnNew,
			}, nil
		}),
	}
	cmd.Flags().BoolVar(&returnNew, "new", false, "print the updated document instead of the original")
	return cmd
}

func updateRequest(op request.Operation, args []string, returnNew bool) (request.Request, error) {
	query, err := parseObject(args[1])
	if err != nil {
		return request.Request{}, errors.Wrap(err, "query")
	}
	payload, err := parseObject(args[2])
	if err != nil {
		return request.Request{}, errors.Wrap(err, "payload")
	}
	return request.Request{
		Operation:  op,
		Collection: args[0],
		Query:      query,
		Payload:    payload,
		New:        returnNew,
	}, nil
}

func deleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <query>",
		Short: "Delete the first document matching a query",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			query, err := parseObject(args[1])
			if err != nil {
				return request.Request{}, errors.Wrap(err, "query")
			}
			return request.Request{Operation: request.DeleteOne, Collection: args[0], Query: query}, nil
		}),
	}
}

func deleteManyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-many <collection> [query]",
		Short: "Delete all documents matching a query, or every document without one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(args []string) (request.Request, error) {
			req := request.Request{Operation: request.DeleteMany, Collection: args[0]}
			if len(args) > 1 {
				query, err := parseObject(args[1])
				if err != nil {
					return req, errors.Wrap(err, "query")
				}
				req.Query = query
			}
			return req, nil
		}),
	}
}

func deleteByIDCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-by-id <collection> <id>",
		Short: "Delete the document with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.FindByIDAndDelete, Collection: args[0], ID: parseID(args[1])}, nil
		}),
	}
}

func exportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <collection> [file]",
		Short: "Write a collection to a JSON file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(args []string) (request.Request, error) {
			return fileRequest(request.Export, args), nil
		}),
	}
}

func importCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <collection> [file]",
		Short: "Insert the documents of an exported JSON file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: a.run(func(args []string) (request.Request, error) {
			return fileRequest(request.Import, args), nil
		}),
	}
}

func fileRequest(op request.Operation, args []string) request.Request {
	req := request.Request{Operation: op, Collection: args[0]}
	if len(args) > 1 {
		req.File = args[1]
	}
	return req
}

func renameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <collection> <name>",
		Short: "Rename a collection",
		Args:  cobra.ExactArgs(2),
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.Rename, Collection: args[0], Name: args[1]}, nil
		}),
	}
}

func dropCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <collection>",
		Short: "Remove a collection and all of its documents",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(args []string) (request.Request, error) {
			return request.Request{Operation: request.Drop, Collection: args[0]}, nil
		}),
	}
}

func serveCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve JSON requests over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return http.ListenAndServe(cmd.Context(), a.db, addr, a.log.Sugar())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "address to listen on")
	return cmd
}

// decodeJSON decodes the argument keeping integers in integer form.
func decodeJSON(arg string, v any) error {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

func parseObject(arg string) (map[string]any, error) {
	var obj map[string]any
	if err := decodeJSON(arg, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("expected a JSON object")
	}
	return obj, nil
}

// parseID accepts a JSON scalar or a bare string.
func parseID(arg string) any {
	var id any
	if err := decodeJSON(arg, &id); err != nil {
		return arg
	}
	switch id.(type) {
	case map[string]any, []any, nil:
		return arg
	}
	return id
}

