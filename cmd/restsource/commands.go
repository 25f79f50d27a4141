package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/samvad-hq/restsource/internal/app"
	"github.com/samvad-hq/restsource/internal/config"
	"github.com/samvad-hq/restsource/internal/logger"
	"github.com/samvad-hq/restsource/pkg/httpclient"
	"github.com/samvad-hq/restsource/pkg/restsource"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cli carries the state shared by every subcommand.
type cli struct {
	v      *viper.Viper
	out    io.Writer
	output string
	rt     *app.Runtime
}

// newRootCommand builds the command tree. The returned func releases the
// runtime opened by whichever subcommand ran.
func newRootCommand(out io.Writer) (*cobra.Command, func() error) {
	c := &cli{v: viper.New(), out: out}

	root := &cobra.Command{
		Use:   "restsource",
		Short: "Query and modify records held behind a REST API",
		Long: `restsource maps record operations onto a REST API: reads become GETs against
/{resource}[/{action}][/{id}].{format}, writes become POST, PUT or DELETE calls,
and read envelopes of the form {"success": ..., "data": ...} are unwrapped.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.start,
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (yaml, json or toml)")
	flags.String("host", "", "REST API base URL")
	flags.String("format", "", "read format extension (default json)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.StringVarP(&c.output, "output", "o", "json", "output format for history and models (json, table)")
	_ = c.v.BindPFlag("config_file", flags.Lookup("config"))
	_ = c.v.BindPFlag("rest_host", flags.Lookup("host"))
	_ = c.v.BindPFlag("rest_format", flags.Lookup("format"))
	_ = c.v.BindPFlag("log_level", flags.Lookup("log-level"))

	root.AddCommand(
		c.newQueryCommand(),
		c.newReadCommand(),
		c.newCreateCommand(),
		c.newUpdateCommand(),
		c.newDeleteCommand(),
		c.newHistoryCommand(),
		c.newModelsCommand(),
	)
	return root, c.close
}

func (c *cli) start(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWith(c.v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	rt, err := app.NewRuntime(cmd.Context(), cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runtime", "error", err)
		return err
	}
	c.rt = rt
	return nil
}

func (c *cli) close() error {
	defer func() { _ = logger.Close() }()
	if c.rt == nil {
		return nil
	}
	return c.rt.Close()
}

func (c *cli) newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <model> <method> <action> [json-body]",
		Short: "Call /{resource}/{action} with an arbitrary method",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			callArgs := []any{args[2]}
			if len(args) == 4 {
				var body any
				if err := decodeJSON([]byte(args[3]), &body); err != nil {
					return fmt.Errorf("parse json body: %w", err)
				}
				callArgs = append(callArgs, body)
			}
			resp, err := c.rt.Source().Query(cmd.Context(), c.rt.Model(args[0]), args[1], callArgs...)
			if err != nil {
				return err
			}
			return c.printResponse(resp)
		},
	}
}

func (c *cli) newReadCommand() *cobra.Command {
	var (
		id     string
		action string
		where  []string
		limit  string
		offset string
		order  string
		page   string
	)
	cmd := &cobra.Command{
		Use:   "read <model>",
		Short: "Fetch records and print the unwrapped data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conds, err := parseAssignments(where)
			if err != nil {
				return err
			}
			if id != "" {
				conds.Set("id", id)
			}
			q := restsource.QueryData{
				Action:     action,
				Conditions: conds,
				Limit:      limit,
				Offset:     offset,
				Order:      order,
				Page:       page,
			}
			data, err := c.rt.Source().Read(cmd.Context(), c.rt.Model(args[0]), q)
			if err != nil {
				return err
			}
			return c.printJSON(data)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record id, sent as a path segment")
	cmd.Flags().StringVar(&action, "action", "", "action path segment")
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "filter condition key=value (repeatable)")
	cmd.Flags().StringVar(&limit, "limit", "", "limit directive")
	cmd.Flags().StringVar(&offset, "offset", "", "offset directive")
	cmd.Flags().StringVar(&order, "order", "", "order directive")
	cmd.Flags().StringVar(&page, "page", "", "page directive")
	return cmd
}

func (c *cli) newCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <model> key=value...",
		Short: "Save a record, probing for an existing one when no id is given",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			resp, err := c.rt.Source().Create(cmd.Context(), c.rt.Model(args[0]), record.Keys(), values(record))
			if err != nil {
				return err
			}
			return c.printResponse(resp)
		},
	}
}

func (c *cli) newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <model> key=value...",
		Short: "Put a record to /{resource}",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			resp, err := c.rt.Source().Update(cmd.Context(), c.rt.Model(args[0]), record.Keys(), values(record), restsource.Fields{})
			if err != nil {
				return err
			}
			return c.printResponse(resp)
		},
	}
}

func (c *cli) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <model> <id>",
		Short: "Delete /{resource}/{id}",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := c.rt.Source().Delete(cmd.Context(), c.rt.Model(args[0]), args[1])
			if err != nil {
				return err
			}
			return c.printResponse(resp)
		},
	}
}

func (c *cli) newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently dispatched requests from the journal",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			entries, err := c.rt.History(limit)
			if err != nil {
				return err
			}
			if c.output != "table" {
				return c.printJSON(entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.At.Format("2006-01-02 15:04:05"),
					e.Verb,
					e.URL,
					strconv.Itoa(e.StatusCode),
					strconv.FormatInt(e.ElapsedMs, 10),
					strconv.FormatBool(e.Probe),
					e.Error,
				})
			}
			return c.printTable([]string{"At", "Verb", "URL", "Status", "Elapsed ms", "Probe", "Error"}, rows)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func (c *cli) newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models bound in the resources file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			models := c.rt.Models()
			if c.output != "table" {
				return c.printJSON(models)
			}
			rows := make([][]string, 0, len(models))
			for _, m := range models {
				rows = append(rows, []string{m.Name, m.Resource, m.Description})
			}
			return c.printTable([]string{"Name", "Resource", "Description"}, rows)
		},
	}
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printTable(header []string, rows [][]string) error {
	cols := make([]any, 0, len(header))
	for _, h := range header {
		cols = append(cols, h)
	}
	table := tablewriter.NewWriter(c.out)
	table.Header(cols...)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func (c *cli) printResponse(resp httpclient.Response) error {
	out := map[string]any{"status": resp.StatusCode()}
	var body any
	if err := decodeJSON(resp.Body(), &body); err == nil {
		out["body"] = body
	} else {
		out["body"] = string(resp.Body())
	}
	return c.printJSON(out)
}

// parseAssignments turns key=value arguments into ordered fields. Values that
// parse as JSON (numbers, booleans, arrays, objects) keep their type.
func parseAssignments(args []string) (restsource.Fields, error) {
	var f restsource.Fields
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return restsource.Fields{}, fmt.Errorf("expected key=value, got %q", arg)
		}
		var v any
		if err := decodeJSON([]byte(raw), &v); err != nil {
			v = raw
		}
		f.Set(key, v)
	}
	return f, nil
}

// decodeJSON decodes exactly one JSON value, keeping numbers as json.Number
// so large ids are passed through unchanged.
func decodeJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("unexpected data after json value")
	}
	return nil
}

func values(f restsource.Fields) []any {
	out := make([]any, 0, f.Len())
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		out = append(out, v)
	}
	return out
}
