// Command tourctl is the admin command line for the Sapphire Trails back office.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/sapphiretrails/backoffice/internal/client"
	"github.com/sapphiretrails/backoffice/internal/domain"
)

const usage = `usage: tourctl <command> [arguments]

commands:
  login [-user name] [-password pass]
  logout
  tours list
  tours add
  tours delete <id>
  bookings list [-page n]
  bookings show <id>
  bookings accept <id>
  bookings reject <id>
  users list [-type client|admin|superadmin]
  users delete <id>
  admins create -username name -password pass [-role admin|superadmin]
  locations list
  locations delete <slug>
`

type cli struct {
	baseURL     string
	sessionFile string
	in          *bufio.Reader
	out         io.Writer
	errOut      io.Writer
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := sessionPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "tourctl:", err)
		os.Exit(1)
	}
	c := &cli{
		baseURL:     envOr("TOURCTL_API_URL", "http://localhost:8080"),
		sessionFile: path,
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stdout,
		errOut:      os.Stderr,
	}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "tourctl:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.errOut, usage)
		return errors.New("missing command")
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "logout":
		return clearSession(c.sessionFile)
	case "tours":
		return c.tours(ctx, rest)
	case "bookings":
		return c.bookings(ctx, rest)
	case "users":
		return c.users(ctx, rest)
	case "admins":
		return c.admins(ctx, rest)
	case "locations":
		return c.locations(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.out, usage)
		return nil
	default:
		fmt.Fprint(c.errOut, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// public returns a client without credentials.
func (c *cli) public() *client.Client {
	return client.New(c.baseURL)
}

// admin returns an authenticated client from the stored session.
func (c *cli) admin() (*client.Client, error) {
	s, err := loadSession(c.sessionFile)
	if err != nil {
		return nil, err
	}
	base := s.BaseURL
	if base == "" {
		base = c.baseURL
	}
	return client.New(base, client.WithToken(s.Token)), nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	user := fs.String("user", "", "username or email")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	var err error
	if *user == "" {
		if *user, err = c.prompt("Username", ""); err != nil {
			return err
		}
	}
	if *password == "" {
		if *password, err = c.prompt("Password", ""); err != nil {
			return err
		}
	}

	api := c.public()
	res, err := api.Login(ctx, *user, *password)
	if err != nil {
		return err
	}
	if res.User != nil && !res.User.Type.IsStaff() {
		return errors.New("this account has no back office access")
	}
	s := &session{
		BaseURL:   api.BaseURL(),
		Token:     res.AccessToken,
		Login:     *user,
		ExpiresAt: time.Now().Add(time.Duration(res.ExpiresIn) * time.Second),
	}
	if err := saveSession(c.sessionFile, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", *user)
	return nil
}

func (c *cli) tours(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: tourctl tours list|add|delete")
	}
	switch args[0] {
	case "list":
		list, err := c.public().ListTours(ctx)
		if err != nil {
			return err
		}
		if list.Fallback {
			fmt.Fprintln(c.errOut, "warning: server returned no package list, showing the static catalog")
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tTITLE\tDURATION\tPRICE")
		for _, t := range list.Tours {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s %s\n", t.ID, t.Slug, t.TourPageTitle, t.Duration, t.Price, t.PriceSuffix)
		}
		return tw.Flush()
	case "add":
		api, err := c.admin()
		if err != nil {
			return err
		}
		return c.addTour(ctx, api)
	case "delete":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		api, err := c.admin()
		if err != nil {
			return err
		}
		if err := api.DeleteTour(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted tour package %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown tours command %q", args[0])
	}
}

func (c *cli) bookings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: tourctl bookings list|show|accept|reject")
	}
	api, err := c.admin()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("bookings list", flag.ContinueOnError)
		page := fs.Int("page", 1, "page number")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		p, err := api.BookingPage(ctx, *page)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Pending %d  Accepted %d  Rejected %d  Total %d\n\n",
			p.Stats.Pending, p.Stats.Accepted, p.Stats.Rejected, p.Stats.Total)
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTOUR\tDATE\tGUESTS\tSTATUS")
		for _, b := range p.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n", b.ID, b.Name, b.TourType, b.Date, b.Guests, b.Status)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nPage %d of %d\n", p.Page, p.TotalPages)
		return nil
	case "show":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		b, err := api.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		printBooking(c.out, b)
		return nil
	case "accept", "reject":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		status := domain.BookingAccepted
		if args[0] == "reject" {
			status = domain.BookingRejected
		}
		b, err := api.SetBookingStatus(ctx, id, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Booking %d is now %s\n", b.ID, b.Status)
		return nil
	default:
		return fmt.Errorf("unknown bookings command %q", args[0])
	}
}

func printBooking(w io.Writer, b *domain.BookingDTO) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%d\n", b.ID)
	fmt.Fprintf(tw, "Name\t%s\n", b.Name)
	fmt.Fprintf(tw, "Email\t%s\n", b.Email)
	fmt.Fprintf(tw, "Phone\t%s\n", b.Phone)
	fmt.Fprintf(tw, "Tour\t%s\n", b.TourType)
	fmt.Fprintf(tw, "Date\t%s\n", b.Date)
	fmt.Fprintf(tw, "Guests\t%d\n", b.Guests)
	fmt.Fprintf(tw, "Status\t%s\n", b.Status)
	fmt.Fprintf(tw, "Requested\t%s\n", b.CreatedAt.Format(time.RFC1123))
	if b.Message != "" {
		fmt.Fprintf(tw, "Message\t%s\n", b.Message)
	}
	tw.Flush()
}

func (c *cli) users(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: tourctl users list|delete")
	}
	api, err := c.admin()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("users list", flag.ContinueOnError)
		typ := fs.String("type", "", "filter by user type")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		users, err := api.ListUsers(ctx, client.UserListOptions{Type: *typ})
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tLOGIN\tTYPE")
		for _, u := range users {
			login := u.Email
			if login == "" {
				login = u.Username
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Name, login, u.Type)
		}
		return tw.Flush()
	case "delete":
		id, err := argID(args[1:])
		if err != nil {
			return err
		}
		if err := api.DeleteUser(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted user %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown users command %q", args[0])
	}
}

func (c *cli) admins(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "create" {
		return errors.New("usage: tourctl admins create -username name -password pass [-role admin|superadmin]")
	}
	fs := flag.NewFlagSet("admins create", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "initial password")
	role := fs.String("role", string(domain.UserAdmin), "admin or superadmin")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	api, err := c.admin()
	if err != nil {
		return err
	}
	u, err := api.CreateAdmin(ctx, &domain.CreateAdminReq{Username: *username, Password: *password, Role: *role})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created %s %s (id %d)\n", u.Type, u.Username, u.ID)
	return nil
}

func (c *cli) locations(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: tourctl locations list|delete")
	}
	switch args[0] {
	case "list":
		locs, err := c.public().ListLocations(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tTITLE\tSUBTITLE")
		for _, l := range locs {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Slug, l.Title, l.Subtitle)
		}
		return tw.Flush()
	case "delete":
		if len(args) < 2 || args[1] == "" {
			return errors.New("missing location slug")
		}
		api, err := c.admin()
		if err != nil {
			return err
		}
		if err := api.DeleteLocation(ctx, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Deleted location %s\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown locations command %q", args[0])
	}
}

func argID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// prompt reads one line. An empty answer keeps current.
func (c *cli) prompt(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("input closed")
		}
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}
