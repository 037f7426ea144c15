package records

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/ValentinKolb/asadmin/lib/record"
	"github.com/ValentinKolb/asadmin/lib/view"
	"github.com/spf13/cobra"
)

var (
	connectCmd = &cobra.Command{
		Use:   "connect",
		Short: "Connects the backend to a cluster",
		Long: util.WrapString("Connects the backend to a cluster. Without --host, --port or --user " +
			"the parameters of the profile given by --profile or of the active profile are used."),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := connectParams(cmd)
			if err != nil {
				return err
			}
			info, err := restClient.Connect(cmd.Context(), params)
			if err != nil {
				return err
			}
			if err := printJSON(cmd, info); err != nil {
				return err
			}
			if !info.Connected {
				return fmt.Errorf("connection to %s:%d failed", params.Host, params.Port)
			}
			return nil
		},
	}
	disconnectCmd = &cobra.Command{
		Use:   "disconnect",
		Short: "Closes the cluster connection of the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := restClient.Disconnect(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "disconnected successfully")
			return nil
		},
	}
	clusterInfoCmd = &cobra.Command{
		Use:   "cluster-info",
		Short: "Shows the connection status and the nodes of the cluster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := restClient.ClusterInfo(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, info)
		},
	}
	namespacesCmd = &cobra.Command{
		Use:   "namespaces",
		Short: "Lists the namespaces with their statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			namespaces, err := restClient.ListNamespaces(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, namespaces)
		},
	}
	setsCmd = &cobra.Command{
		Use:   "sets [namespace]",
		Short: "Lists the sets of a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sets, err := restClient.ListSets(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, sets)
		},
	}
	scanCmd = &cobra.Command{
		Use:   "scan [namespace] [set]",
		Short: "Reads the records of a set",
		Long: util.WrapString("Reads up to --max records of a set. With --output table one page " +
			"of the records is printed with a column per bin."),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			setName := ""
			if len(args) == 2 {
				setName = args[1]
			}
			maxRecords, _ := cmd.Flags().GetInt("max")
			records, err := restClient.Scan(cmd.Context(), args[0], setName, maxRecords)
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		},
	}
	searchCmd = &cobra.Command{
		Use:   "search [namespace] [set] [pattern]",
		Short: "Finds the records of a set whose key matches a pattern",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, _ := cmd.Flags().GetString("type")
			mt, err := record.ParseMatchType(typ)
			if err != nil {
				return err
			}
			maxResults, _ := cmd.Flags().GetInt("max")
			records, err := restClient.Search(cmd.Context(), record.SearchRequest{
				Namespace:     args[0],
				SetName:       args[1],
				SearchPattern: args[2],
				SearchType:    mt,
				MaxResults:    maxResults,
			})
			if err != nil {
				return err
			}
			return printRecords(cmd, records)
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [namespace] [set] [key]",
		Short: "Reads a single record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := restClient.GetRecord(cmd.Context(), args[0], args[1], args[2])
			if errors.Is(err, driver.ErrRecordNotFound) {
				return fmt.Errorf("record %s/%s/%s not found", args[0], args[1], args[2])
			} else if err != nil {
				return err
			}
			if edit, _ := cmd.Flags().GetBool("edit"); edit {
				fmt.Fprintln(cmd.OutOrStdout(), record.EditText(rec.Bins))
				return nil
			}
			return printJSON(cmd, rec)
		},
	}
	putCmd = &cobra.Command{
		Use:   "put [namespace] [set] [key]",
		Short: "Replaces the bins of a record",
		Long: util.WrapString("Writes a record from a JSON object of bins (--bins, '-' reads stdin). " +
			"Values in the shape of the editor document (e.g. from 'get --edit') are accepted."),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			binsText, _ := cmd.Flags().GetString("bins")
			ttlText, _ := cmd.Flags().GetString("ttl")
			if binsText == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				binsText = string(raw)
			}
			rec, err := record.EditRecord(record.Record{Namespace: args[0], SetName: args[1], Key: args[2]}, binsText, ttlText)
			if err != nil {
				return err
			}
			return write(cmd, rec)
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [namespace] [set] [key]",
		Short: "Creates a record from typed bins",
		Long: util.WrapString("Creates a record from --bin flags of the form name:type=value " +
			"where type is one of string, number, boolean or json (default string)."),
		Example: "  asadmin records add test users carol --bin name=Carol --bin age:number=31 --bin tags:json='[\"a\"]'",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			specs, _ := cmd.Flags().GetStringArray("bin")
			ttlText, _ := cmd.Flags().GetString("ttl")
			form := record.Form{Namespace: args[0], SetName: args[1], Key: args[2], TTL: ttlText}
			for _, spec := range specs {
				in, err := record.ParseBinInput(spec)
				if err != nil {
					return err
				}
				form.Bins = append(form.Bins, in)
			}
			rec, err := form.Build()
			if err != nil {
				return err
			}
			return write(cmd, rec)
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [namespace] [set] [key]",
		Short: "Deletes a record",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := restClient.DeleteRecord(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "key=%s, deleted=%t\n", args[2], deleted)
			return nil
		},
	}
)

func init() {
	connectCmd.Flags().String("host", "", util.WrapString("The host of the cluster seed node (default localhost)"))
	connectCmd.Flags().Int("port", 0, util.WrapString("The port of the cluster seed node (default 3000)"))
	connectCmd.Flags().String("user", "", util.WrapString("The user name, only used together with --password"))
	connectCmd.Flags().String("password", "", util.WrapString("The password of the user"))
	connectCmd.Flags().String("profile", "", util.WrapString("The id or name of a saved profile to connect with"))

	scanCmd.Flags().Int("max", driver.DefaultMaxRecords, util.WrapString("The maximum number of records to read"))
	searchCmd.Flags().Int("max", driver.DefaultMaxRecords, util.WrapString("The maximum number of matches to return"))
	searchCmd.Flags().String("type", string(record.MatchExact), util.WrapString("How keys are compared with the pattern (EXACT, PREFIX, SUFFIX, CONTAINS)"))
	for _, c := range []*cobra.Command{scanCmd, searchCmd} {
		c.Flags().String("output", "json", util.WrapString("The output format (json or table)"))
		c.Flags().Int("page", 1, util.WrapString("The page printed by --output table"))
		c.Flags().Int("page-size", view.DefaultPageSize, util.WrapString("The rows per page of --output table (10, 20, 50 or 100)"))
	}

	getCmd.Flags().Bool("edit", false, util.WrapString("Print the bins as the document accepted by put --bins"))

	putCmd.Flags().String("bins", "", util.WrapString("The bins as a JSON object, '-' reads them from stdin"))
	_ = putCmd.MarkFlagRequired("bins")
	putCmd.Flags().String("ttl", "", util.WrapString("The ttl in seconds, -1 never expires, empty keeps the namespace default"))

	addCmd.Flags().StringArray("bin", nil, util.WrapString("A bin as name[:type]=value, can be repeated"))
	addCmd.Flags().String("ttl", "", util.WrapString("The ttl in seconds, -1 never expires, empty keeps the namespace default"))
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// connectParams builds the connection parameters from the flags or a profile
func connectParams(cmd *cobra.Command) (driver.ConnectParams, error) {
	flags := cmd.Flags()
	host, _ := flags.GetString("host")
	port, _ := flags.GetInt("port")
	user, _ := flags.GetString("user")
	password, _ := flags.GetString("password")
	name, _ := flags.GetString("profile")

	explicit := flags.Changed("host") || flags.Changed("port") || flags.Changed("user")
	if explicit && name == "" {
		return driver.ConnectParams{Host: host, Port: port, User: user, Password: password}.WithDefaults(), nil
	}

	profiles, err := util.OpenProfiles()
	if err != nil {
		return driver.ConnectParams{}, err
	}
	var p profile.Profile
	if name != "" {
		if p, err = profiles.Find(name); err != nil {
			return driver.ConnectParams{}, err
		}
	} else {
		active, ok, err := profiles.Active()
		if err != nil {
			return driver.ConnectParams{}, err
		}
		if !ok {
			return driver.ConnectParams{}.WithDefaults(), nil
		}
		p = active
	}
	params := p.ConnectParams()
	if password != "" {
		params.Password = password
	}
	return params, nil
}

// write stores a record and prints it as stored
func write(cmd *cobra.Command, rec record.Record) error {
	stored, err := restClient.PutRecord(cmd.Context(), rec)
	if err != nil {
		return err
	}
	return printJSON(cmd, stored)
}

// printRecords prints records in the format given by --output
func printRecords(cmd *cobra.Command, records []record.Record) error {
	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "json", "":
		return printJSON(cmd, records)
	case "table":
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("page-size")
		return writeTable(cmd.OutOrStdout(), records, size, page)
	default:
		return fmt.Errorf("invalid output %q (expected json or table)", output)
	}
}

// writeTable prints one page of records with a column per bin
func writeTable(out io.Writer, records []record.Record, pageSize, page int) error {
	if !slices.Contains(view.PageSizes, pageSize) {
		return fmt.Errorf("invalid page size %d (expected one of %v)", pageSize, view.PageSizes)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no records")
		return err
	}
	rows, total := view.Paginate(records, pageSize, page)
	if page < 1 || page > total {
		return fmt.Errorf("page %d out of range (1-%d)", page, total)
	}
	columns := record.BinNames(records)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\t"+strings.Join(upper(columns), "\t"))
	for _, rec := range rows {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, rec.Key)
		for _, name := range columns {
			cells = append(cells, record.DisplayBin(rec, name))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\npage %d of %d (%d records)\n", page, total, len(records))
	return err
}

func upper(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToUpper(n)
	}
	return out
}
