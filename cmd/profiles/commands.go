package profiles

import (
	"fmt"
	"strconv"

	"github.com/ValentinKolb/asadmin/cmd/util"
	"github.com/ValentinKolb/asadmin/lib/profile"
	"github.com/spf13/cobra"
)

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "Lists the saved profiles, the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := manager.List()
			if err != nil {
				return err
			}
			active, _, err := manager.Active()
			if err != nil {
				return err
			}
			return writeProfiles(cmd.OutOrStdout(), all, active.ID)
		},
	}
	addCmd = &cobra.Command{
		Use:   "add [name]",
		Short: "Saves a new connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := profileFromFlags(cmd)
			p.Name = args[0]
			saved, err := manager.Save(p)
			if err != nil {
				return err
			}
			if use, _ := cmd.Flags().GetBool("use"); use {
				if err := manager.SetActive(saved.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved profile %s (id=%s)\n", saved.Name, saved.ID)
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [id|name]",
		Short: "Changes the fields of a profile given by flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := manager.Find(args[0])
			if err != nil {
				return err
			}
			patch := profileFromFlags(cmd)
			patch.Name, _ = cmd.Flags().GetString("name")
			updated, err := manager.Update(p.ID, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated profile %s (id=%s)\n", updated.Name, updated.ID)
			return nil
		},
	}
	deleteCmd = &cobra.Command{
		Use:   "delete [id|name]",
		Short: "Deletes a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := manager.Find(args[0])
			if err != nil {
				return err
			}
			if err := manager.Delete(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted profile %s\n", p.Name)
			return nil
		},
	}
	useCmd = &cobra.Command{
		Use:   "use [id|name]",
		Short: "Makes a profile the active one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset, _ := cmd.Flags().GetBool("clear"); reset {
				if err := manager.SetActive(""); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared active profile")
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("a profile id or name is required")
			}
			p, err := manager.Find(args[0])
			if err != nil {
				return err
			}
			if err := manager.SetActive(p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "active profile is %s\n", p.Name)
			return nil
		},
	}
	activeCmd = &cobra.Command{
		Use:   "active",
		Short: "Shows the active profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok, err := manager.Active()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no active profile")
				return nil
			}
			return util.PrintJSON(cmd.OutOrStdout(), p, "")
		},
	}
	themeCmd = &cobra.Command{
		Use:   "theme [dark|light]",
		Short: "Shows or sets the theme of the terminal UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				t, err := profile.ParseTheme(args[0])
				if err != nil {
					return err
				}
				if err := manager.SetTheme(t); err != nil {
					return err
				}
			}
			t, err := manager.Theme()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		},
	}
	widthCmd = &cobra.Command{
		Use:   "width [pixels]",
		Short: fmt.Sprintf("Shows or sets the editor width (%d-%d)", profile.MinEditorWidth, profile.MaxEditorWidth),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				w, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("width must be a number: %w", err)
				}
				if _, err := manager.SetEditorWidth(w); err != nil {
					return err
				}
			}
			w, err := manager.EditorWidth()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), w)
			return nil
		},
	}
)

// profileFromFlags reads the connection flags shared by add and update
func profileFromFlags(cmd *cobra.Command) profile.Profile {
	var p profile.Profile
	p.Host, _ = cmd.Flags().GetString("host")
	p.Port, _ = cmd.Flags().GetInt("port")
	p.Username, _ = cmd.Flags().GetString("user")
	p.Password, _ = cmd.Flags().GetString("password")
	return p
}
