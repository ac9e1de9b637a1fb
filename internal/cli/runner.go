package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Makepad-fr/leads/internal/auth"
	"github.com/Makepad-fr/leads/internal/config"
	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/jsonstore"
	"github.com/Makepad-fr/leads/internal/store/leadstore"
	"github.com/Makepad-fr/leads/internal/ui"
)

// Options carry root flags and the collaborators built in main.
type Options struct {
	Group  bool // list grouped by status
	Config config.Config
	Store  *leadstore.Store
	Creds  *auth.Credentials
	Stdin  io.Reader // token input for `auth login`; os.Stdin when nil

	// RunTUI starts the interactive list. Injected so tests can skip the
	// terminal.
	RunTUI func(ctx context.Context, s *leadstore.Store) error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(ctx, opt)

	case "show":
		if len(a) != 1 {
			ui.Fail("usage: leads show <id>")
			return 2
		}
		id, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("show: not a number: " + a[0])
			return 2
		}
		return doShow(ctx, opt, id)

	case "tui":
		return doTUI(ctx, opt)

	case "export":
		if len(a) != 1 {
			ui.Fail("usage: leads export <file.json>")
			return 2
		}
		return doExport(ctx, opt, a[0])

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: leads auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(opt)
		case "logout":
			return doAuthLogout(opt)
		case "status":
			return doAuthStatus(opt)
		case "whoami":
			return doAuthWhoAmI(opt)
		default:
			ui.Fail("usage: leads auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	ui.Printf(`leads - employee leads from the terminal

Usage:
  leads [flags] <subcommand> [args]

Subcommands:
  ls                 Fetch and list leads (-group to group by status)
  show <id>          Fetch and show one lead with its contacts
  tui                Interactive list (reload, add, edit, delete, undo)
  export <file>      Fetch and write the list as JSON
  auth <login|logout|status|whoami>   Bearer token handling

Environment:
  LEADS_BASE_URL, LEADS_ENDPOINT, LEADS_TOKEN, LEADS_TIMEOUT, LEADS_DEBUG,
  LEADS_THEME, LEADS_LOG_FILE (also read from ./.env)

Examples:
  leads ls
  leads -group ls
  leads show 42
  leads export leads.json
`)
}

// ---------------------------------------------------
// Lead subcommands
// ---------------------------------------------------

// load runs a store load and reports a failure the way every subcommand
// does. ok is false when the store ended up with an error.
func load(ctx context.Context, opt Options) (leadstore.State, bool) {
	st := opt.Store.Load(ctx)
	if st.Error != "" {
		ui.Fail("load: " + st.Error)
		ui.Hint(fmt.Sprintf("Hint: check LEADS_BASE_URL (%s) and `leads auth status`", opt.Config.BaseURL))
		return st, false
	}
	return st, true
}

func doList(ctx context.Context, opt Options) int {
	st, ok := load(ctx, opt)
	if !ok {
		return 1
	}

	t := ui.Current()
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Leads"),
		ui.C(t.Accent, "Total"), len(st.List),
		ui.C(t.Success, t.ContactSym), withContacts(st.List),
		ui.C(t.Warn, t.Bullet), len(groupByStatus(st.List)),
	)

	var lines []string
	lines = append(lines, header, "")
	if opt.Group {
		lines = append(lines, groupLines(st.List)...)
	} else {
		lines = append(lines, flatLines(st.List)...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Muted, "Tip: `leads show <id>` for contacts, `leads tui` to edit"))
	ui.Panel(lines)
	return 0
}

func doShow(ctx context.Context, opt Options, id int) int {
	st, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	for _, l := range st.List {
		if l.ID == id {
			ui.Panel(detailLines(l))
			return 0
		}
	}
	ui.Fail(fmt.Sprintf("no lead with id %d (have %d leads)", id, len(st.List)))
	ui.Hint("Hint: run `leads ls` to see valid ids")
	return 2
}

func doExport(ctx context.Context, opt Options, path string) int {
	st, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	if err := jsonstore.Save(path, st.List); err != nil {
		ui.Fail("export: " + err.Error())
		return 1
	}
	ui.OK(fmt.Sprintf("exported %d leads to %s", len(st.List), path))
	return 0
}

func doTUI(ctx context.Context, opt Options) int {
	if opt.RunTUI == nil {
		ui.Fail("tui: not available")
		return 1
	}
	if err := opt.RunTUI(ctx, opt.Store); err != nil {
		ui.Fail("tui: " + err.Error())
		return 1
	}
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func doAuthLogin(opt Options) int {
	in := opt.Stdin
	if in == nil {
		in = os.Stdin
	}
	ui.Printf("Paste your token: ")
	sc := bufio.NewScanner(in)
	if !sc.Scan() {
		msg := "no input"
		if err := sc.Err(); err != nil {
			msg = err.Error()
		}
		ui.Println()
		ui.Fail("read token: " + msg)
		return 1
	}
	if err := opt.Creds.Set(sc.Text()); err != nil {
		ui.Fail("save token: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout(opt Options) int {
	ti, _ := opt.Creds.Get(opt.Config.Token)
	if ti != nil && ti.Source == "env" {
		ui.OK("token is provided by " + auth.EnvVar + " (nothing to delete)")
		return 0
	}
	if err := opt.Creds.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus(opt Options) int {
	ti, err := opt.Creds.Get(opt.Config.Token)
	if err != nil {
		ui.Fail("status: " + err.Error())
		return 1
	}
	if ti == nil {
		ui.Println(ui.C(ui.Current().Muted, "not logged in"))
		ui.Println("Run: leads auth login")
		return 0
	}
	ui.Printf("source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		state := "valid"
		if ti.ExpiresAt.Before(time.Now()) {
			state = "expired"
		}
		ui.Printf("expires: %s (%s)\n", ti.ExpiresAt.UTC().Format(time.RFC3339), state)
	} else {
		ui.Println("expires: (unknown)")
	}
	ui.Println("env override: " + auth.EnvVar)
	return 0
}

// whoami decodes JWT claims locally (unverified); opaque tokens print basic info.
func doAuthWhoAmI(opt Options) int {
	ti, _ := opt.Creds.Get(opt.Config.Token)
	if ti == nil || strings.TrimSpace(ti.Token) == "" {
		ui.Fail("not logged in. Run: leads auth login")
		return 2
	}
	claims, err := auth.Claims(ti.Token)
	if err != nil {
		ui.Println("Opaque token (cannot introspect locally).")
		ui.Println("source:", ti.Source)
		return 0
	}
	b, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		ui.Fail("whoami: " + err.Error())
		return 1
	}
	ui.Println("JWT payload:")
	ui.Println(string(b))
	return 0
}

// ---------------------------------------------------
// Rendering helpers
// ---------------------------------------------------

func withContacts(leads []model.Lead) int {
	n := 0
	for _, l := range leads {
		if len(l.Contacts) > 0 {
			n++
		}
	}
	return n
}

type statusGroup struct {
	name  string
	leads []model.Lead
}

// groupByStatus keeps statuses in order of first appearance, with leads
// that have no status last.
func groupByStatus(leads []model.Lead) []statusGroup {
	idx := map[string]int{}
	var groups []statusGroup
	for _, l := range leads {
		name := l.Status()
		i, ok := idx[name]
		if !ok {
			i = len(groups)
			idx[name] = i
			groups = append(groups, statusGroup{name: name})
		}
		groups[i].leads = append(groups[i].leads, l)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].name != "" && groups[j].name == ""
	})
	return groups
}

func flatLines(leads []model.Lead) []string {
	t := ui.Current()
	if len(leads) == 0 {
		return []string{ui.C(t.Muted, "no leads")}
	}
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		id := fmt.Sprintf("#%-4d", l.ID)
		status := l.Status()
		if status == "" {
			status = t.NoStatus
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s  %s",
			ui.C(t.Muted, id),
			ui.Truncate(l.CompanyName, 40),
			ui.C(t.Muted, "("+ui.Truncate(l.CompanyLocation, 24)+")"),
			ui.C(t.Accent, status),
			ui.C(t.Muted, l.Source+" · "+l.Date),
		))
	}
	return out
}

func groupLines(leads []model.Lead) []string {
	t := ui.Current()
	if len(leads) == 0 {
		return []string{ui.C(t.Muted, "no leads")}
	}
	var lines []string
	for i, g := range groupByStatus(leads) {
		if i > 0 {
			lines = append(lines, "")
		}
		name := g.name
		if name == "" {
			name = t.NoStatus
		}
		lines = append(lines, fmt.Sprintf("%s  %s",
			ui.C(t.Accent, name),
			ui.C(t.Muted, ui.Bar(len(g.leads), len(leads), 20))))
		lines = append(lines, flatLines(g.leads)...)
	}
	return lines
}

func detailLines(l model.Lead) []string {
	t := ui.Current()
	field := func(label, v string) string {
		if v == "" {
			v = ui.C(t.Muted, "-")
		}
		return fmt.Sprintf("%s %s", ui.C(t.Muted, fmt.Sprintf("%-9s", label+":")), v)
	}
	lines := []string{
		ui.C(t.Title, fmt.Sprintf("#%d %s", l.ID, l.CompanyName)),
		"",
		field("Location", l.CompanyLocation),
		field("Source", l.Source),
		field("Date", l.Date),
		field("Status", l.Status()),
		field("Owner", model.Deref(l.OwnerName)),
		field("Notes", model.Deref(l.Notes)),
		"",
		ui.C(t.Accent, fmt.Sprintf("Contacts (%d)", len(l.Contacts))),
	}
	if len(l.Contacts) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	}
	for _, c := range l.Contacts {
		lines = append(lines, t.ContactSym+" "+contactLine(c))
	}
	return lines
}

func contactLine(c model.Contact) string {
	name := model.Deref(c.Name)
	if name == "" {
		name = "(unnamed)"
	}
	var role []string
	for _, p := range []*string{c.Title, c.RoleName} {
		if v := model.Deref(p); v != "" {
			role = append(role, v)
		}
	}
	parts := []string{name}
	if len(role) > 0 {
		parts[0] += " (" + strings.Join(role, ", ") + ")"
	}
	for _, p := range []*string{c.Email, c.Phone} {
		if v := model.Deref(p); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "  ")
}
