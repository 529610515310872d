package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/spf13/cobra"
)

var (
	sendCmd = &cobra.Command{
		Use:   "send [file]",
		Short: "Sends a raw query JSON file to the server ('-' reads stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = os.ReadFile("/dev/stdin")
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			req, err := query.ParseRequest(raw)
			if err != nil {
				return err
			}

			switch r := req.(type) {
			case *query.Query:
				result, err := dbClient.Execute(context.Background(), r)
				if err != nil {
					return err
				}
				return printJSON(result)
			case *query.TransactionQuery:
				result, err := dbClient.ExecuteTransaction(context.Background(), r)
				if err != nil {
					return err
				}
				return printJSON(result)
			default:
				return fmt.Errorf("unsupported request type %T", req)
			}
		},
	}

	addCmd = &cobra.Command{
		Use:   "add [collection] [json-doc]...",
		Short: "Adds one or more JSON documents to a collection",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs := make([]map[string]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				var doc map[string]any
				if err := json.Unmarshal([]byte(arg), &doc); err != nil {
					return fmt.Errorf("invalid document %q: %w", arg, err)
				}
				docs = append(docs, doc)
			}

			q := query.NewAdd(args[0], docs...)
			q.SerialKey, _ = cmd.Flags().GetString("serial-key")
			q.ReturnData = true

			result, err := dbClient.Execute(context.Background(), q)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search [collection] [field] [op] [value]",
		Short: "Searches a collection by one field comparison (op: eq, neq, gt, gte, lt, lte, contains, startsWith, endsWith)",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := query.DecodeNode(mustNodeJSON(args[2], args[1], args[3]))
			if err != nil {
				return err
			}

			result, err := dbClient.Execute(context.Background(), query.NewSearch(args[0], raw))
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	getAllCmd = &cobra.Command{
		Use:   "get-all [collection]",
		Short: "Returns every document of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dbClient.Execute(context.Background(), query.NewGetAll(args[0]))
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	countCmd = &cobra.Command{
		Use:   "count [collection]",
		Short: "Counts the documents of a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := dbClient.Execute(context.Background(), query.NewCount(args[0], nil))
			if err != nil {
				return err
			}
			fmt.Printf("collection=%s, count=%d\n", args[0], result.HitCount)
			return nil
		},
	}
)

func init() {
	addCmd.Flags().String("serial-key", "", "Document field that receives an auto-incremented serial number")
}

// mustNodeJSON builds the wire form of a single comparison node. The value
// is taken as JSON when it parses, as a plain string otherwise.
func mustNodeJSON(op, field, value string) []byte {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	raw, _ := json.Marshal(map[string]any{
		"type":  op,
		"field": field,
		"value": parsed,
	})
	return raw
}

// printJSON pretty-prints a result to stdout
func printJSON(v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
