package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/ErikKalkoken/mountroulette/internal/app"
	"github.com/ErikKalkoken/mountroulette/internal/app/bulkselection"
	"github.com/ErikKalkoken/mountroulette/internal/app/catalog"
	"github.com/ErikKalkoken/mountroulette/internal/app/configfile"
	"github.com/ErikKalkoken/mountroulette/internal/app/configservice"
)

var errUsage = errors.New("usage error")

// cli executes commands against the configuration.
type cli struct {
	assumeYes      bool
	catalog        *catalog.Catalog
	characterID    uint64 // active character, if any
	characterName  string
	characterWorld string
	in             *bufio.Reader
	out            io.Writer
	store          app.ConfigStore
	svc            *configservice.Service
}

func newCLI(store app.ConfigStore, cat *catalog.Catalog, in io.Reader, out io.Writer) *cli {
	c := &cli{
		catalog: cat,
		in:      bufio.NewReader(in),
		out:     out,
		store:   store,
	}
	c.svc = configservice.New(store, cat, terminalDialog{out: out})
	return c
}

const usageText = `Commands:
  groups                          list all groups
  add NAME                        add a new group
  rename NAME NEW-NAME            rename a group
  delete NAME                     delete a group
  roulette [ground|flying] [GROUP|off]
                                  show or change the roulettes
  select GROUP on|off all|page N|selected|unselected
                                  select or unselect mounts of a group
  include-new GROUP on|off        change whether new mounts are included in a group
  mounts GROUP [PAGE]             show the mounts of a group
  characters                      list all characters
  import-character TARGET SOURCE  import the settings of one character into another
  delete-character ID             delete the settings of a character
  export FILE                     export the configuration to a YAML file, "-" for stdout
  import FILE                     replace the configuration with a YAML file
`

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command: %w", errUsage)
	}
	cmd, args := args[0], args[1:]
	if cmd == "import" {
		return c.importConfig(ctx, args)
	}
	if err := c.svc.Init(ctx); err != nil {
		return err
	}
	defer c.svc.Close()
	if c.characterID != 0 {
		if err := c.svc.SetActiveCharacter(ctx, c.characterID, c.characterName, c.characterWorld); err != nil {
			return err
		}
	}
	switch cmd {
	case "groups":
		return c.listGroups()
	case "add":
		return c.addGroup(ctx, args)
	case "rename":
		return c.renameGroup(ctx, args)
	case "delete":
		return c.deleteGroup(ctx, args)
	case "roulette":
		return c.roulette(ctx, args)
	case "select":
		return c.selectMounts(ctx, args)
	case "include-new":
		return c.includeNew(ctx, args)
	case "mounts":
		return c.listMounts(args)
	case "characters":
		return c.listCharacters()
	case "import-character":
		return c.importCharacter(ctx, args)
	case "delete-character":
		return c.deleteCharacter(ctx, args)
	case "export":
		return c.exportConfig(args)
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func wantArgs(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("expected %d arguments, got %d: %w", n, len(args), errUsage)
	}
	return nil
}

// resolve resolves the pending request after asking the user.
func (c *cli) resolve(ctx context.Context) error {
	confirmed := c.assumeYes
	if !confirmed {
		confirmed = askYesNo(c.in, c.out)
	}
	if err := c.svc.Gate().Resolve(ctx, confirmed); err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(c.out, "Aborted")
	}
	return nil
}

func (c *cli) listGroups() error {
	r := c.svc.Registry()
	roulettes := make(map[app.GroupID][]string)
	for _, x := range app.Roulettes() {
		g, ok, err := r.RouletteGroup(x)
		if err != nil {
			return err
		}
		if ok {
			roulettes[g.ID] = append(roulettes[g.ID], x.String())
		}
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMOUNTS\tNEW MOUNTS\tROULETTES")
	for _, g := range r.Groups() {
		name := g.Name
		if g.IsDefault {
			name += " (default)"
		}
		incl := "no"
		if g.IncludeNewItems {
			incl = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, humanize.Comma(int64(g.EnabledItems.Size())), incl, strings.Join(roulettes[g.ID], ", "))
	}
	return w.Flush()
}

func (c *cli) addGroup(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1); err != nil {
		return err
	}
	g, err := c.svc.Registry().Add(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Added group %s\n", g.Name)
	return nil
}

func (c *cli) renameGroup(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2); err != nil {
		return err
	}
	r := c.svc.Registry()
	g, err := r.GroupByName(args[0])
	if err != nil {
		return err
	}
	if err := r.Rename(ctx, g.ID, args[1]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Renamed group to %s\n", g.Name)
	return nil
}

func (c *cli) deleteGroup(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1); err != nil {
		return err
	}
	g, err := c.svc.Registry().GroupByName(args[0])
	if err != nil {
		return err
	}
	if err := c.svc.RequestDeleteGroup(g.ID); err != nil {
		return err
	}
	return c.resolve(ctx)
}

func parseRoulette(s string) (app.Roulette, error) {
	for _, x := range app.Roulettes() {
		if strings.EqualFold(x.String(), s) {
			return x, nil
		}
	}
	return 0, fmt.Errorf("unknown roulette %q: %w", s, errUsage)
}

func (c *cli) roulette(ctx context.Context, args []string) error {
	r := c.svc.Registry()
	if len(args) == 0 {
		for _, x := range app.Roulettes() {
			g, ok, err := r.RouletteGroup(x)
			if err != nil {
				return err
			}
			name := "off"
			if ok {
				name = g.Name
			}
			fmt.Fprintf(c.out, "%s: %s\n", x, name)
		}
		return nil
	}
	if err := wantArgs(args, 2); err != nil {
		return err
	}
	which, err := parseRoulette(args[0])
	if err != nil {
		return err
	}
	switch strings.ToLower(args[1]) {
	case "off":
		r.DisableRoulette(ctx, which)
		return nil
	case "on":
		r.EnableRoulette(ctx, which)
		return nil
	}
	g, err := r.GroupByName(args[1])
	if err != nil {
		return err
	}
	return r.SetRouletteGroup(ctx, which, g.ID)
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q: %w", s, errUsage)
}

func parseScope(selected bool, args []string) (bulkselection.Scope, error) {
	if len(args) == 0 {
		return bulkselection.Scope{}, fmt.Errorf("scope missing: %w", errUsage)
	}
	switch args[0] {
	case "all":
		return bulkselection.ForSelect(selected), nil
	case "selected":
		return bulkselection.OnlySelected(), nil
	case "unselected":
		return bulkselection.OnlyUnselected(), nil
	case "page":
		if len(args) != 2 {
			return bulkselection.Scope{}, fmt.Errorf("page number missing: %w", errUsage)
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return bulkselection.Scope{}, fmt.Errorf("page number: %w", errUsage)
		}
		return bulkselection.Page(n), nil
	}
	return bulkselection.Scope{}, fmt.Errorf("unknown scope %q: %w", args[0], errUsage)
}

func (c *cli) selectMounts(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("expected group, on|off and scope: %w", errUsage)
	}
	g, err := c.svc.Registry().GroupByName(args[0])
	if err != nil {
		return err
	}
	selected, err := parseOnOff(args[1])
	if err != nil {
		return err
	}
	scope, err := parseScope(selected, args[2:])
	if err != nil {
		return err
	}
	n, err := c.svc.RequestBulkUpdate(g.ID, selected, scope)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(c.out, "Nothing to change")
		return nil
	}
	return c.resolve(ctx)
}

func (c *cli) includeNew(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2); err != nil {
		return err
	}
	r := c.svc.Registry()
	g, err := r.GroupByName(args[0])
	if err != nil {
		return err
	}
	v, err := parseOnOff(args[1])
	if err != nil {
		return err
	}
	n, err := r.SetIncludeNewItems(ctx, g.ID, v)
	if err != nil {
		return err
	}
	if n > 0 {
		fmt.Fprintf(c.out, "Selected %s newly unlocked mounts\n", humanize.Comma(int64(n)))
	}
	return nil
}

func (c *cli) listMounts(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("expected group and optional page: %w", errUsage)
	}
	r := c.svc.Registry()
	g, err := r.GroupByName(args[0])
	if err != nil {
		return err
	}
	e, err := r.Engine(g.ID)
	if err != nil {
		return err
	}
	page := 1
	if len(args) == 2 {
		page, err = strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("page number: %w", errUsage)
		}
	}
	if e.PageCount() == 0 {
		fmt.Fprintln(c.out, "No unlocked mounts")
		return nil
	}
	ids, err := e.PageItems(page)
	if err != nil {
		return err
	}
	for _, id := range ids {
		mark := " "
		if g.IsEnabled(id) {
			mark = "x"
		}
		fmt.Fprintf(c.out, "[%s] %s\n", mark, c.catalog.Name(id))
	}
	fmt.Fprintf(c.out, "Page %d of %d\n", page, e.PageCount())
	return nil
}

func (c *cli) listCharacters() error {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tGROUPS")
	for _, x := range c.svc.Characters().List() {
		fmt.Fprintf(w, "%d\t%s\t%d\n", x.CharacterID, x.DisplayName(), len(x.Settings.Groups))
	}
	return w.Flush()
}

func parseCharacterID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid character ID %q: %w", s, errUsage)
	}
	return id, nil
}

func (c *cli) importCharacter(ctx context.Context, args []string) error {
	if err := wantArgs(args, 2); err != nil {
		return err
	}
	target, err := parseCharacterID(args[0])
	if err != nil {
		return err
	}
	source, err := parseCharacterID(args[1])
	if err != nil {
		return err
	}
	if err := c.svc.RequestImportCharacter(target, source); err != nil {
		return err
	}
	return c.resolve(ctx)
}

func (c *cli) deleteCharacter(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1); err != nil {
		return err
	}
	id, err := parseCharacterID(args[0])
	if err != nil {
		return err
	}
	if err := c.svc.RequestDeleteCharacter(id); err != nil {
		return err
	}
	return c.resolve(ctx)
}

func (c *cli) exportConfig(args []string) error {
	if err := wantArgs(args, 1); err != nil {
		return err
	}
	data, err := configfile.Encode(c.svc.Config())
	if err != nil {
		return err
	}
	if args[0] == "-" {
		_, err := c.out.Write(data)
		return err
	}
	return os.WriteFile(args[0], data, 0644)
}

func (c *cli) importConfig(ctx context.Context, args []string) error {
	if err := wantArgs(args, 1); err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := configfile.Decode(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Replace the current configuration with %s?\n", args[0])
	if !c.assumeYes && !askYesNo(c.in, c.out) {
		fmt.Fprintln(c.out, "Aborted")
		return nil
	}
	if err := c.store.SaveConfig(ctx, cfg); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Imported %d groups and %d characters\n", len(cfg.Settings.Groups), len(cfg.Characters))
	return nil
}
