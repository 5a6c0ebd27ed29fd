// Command chatcli is a terminal client for the chat API.
//
//	chatcli [-server URL] [-session FILE] <command> [args]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"messageapp/pkg/client"

	"github.com/olekukonko/tablewriter"
)

const usage = `commands:
  register <email> <username> <name> <password>
  login <email|username> <password>
  logout
  profile
  update [-email E] [-username U] [-name N]
  passwd <old> <new>
  unregister
  users [page]
  search <query>
  chats [page]
  create <title> <username>...
  rename <chatId> <title>
  add <chatId> <username>
  remove <chatId> <username>
  members <chatId>
  messages <chatId> [page]
  send <chatId> <text>...
  edit <messageId> <text>...
  delete <messageId>`

func main() {
	server := flag.String("server", envOr("CHAT_SERVER", "http://localhost:8080"), "API base URL")
	sessionPath := flag.String("session", defaultSessionPath(), "file holding the login session")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <command> [args]\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), usage)
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	session, err := client.LoadSession(*sessionPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cli := &cli{api: client.New(*server, session, nil), out: os.Stdout}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := cli.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var usageErr usageError
		if errors.As(err, &usageErr) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".chatcli-session.json"
	}
	return filepath.Join(dir, "chatcli", "session.json")
}

type usageError string

func (e usageError) Error() string { return string(e) }

type cli struct {
	api *client.Client
	out io.Writer
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 4 {
			return usageError("register <email> <username> <name> <password>")
		}
		id, err := c.api.Register(ctx, args[0], args[3], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "registered and logged in as user %d\n", id)
	case "login":
		if len(args) != 2 {
			return usageError("login <email|username> <password>")
		}
		id, err := c.api.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "logged in as user %d\n", id)
	case "logout":
		return c.api.Logout()
	case "profile":
		user, err := c.api.Profile(ctx)
		if err != nil {
			return err
		}
		c.renderUsers([]client.User{*user}, true)
	case "update":
		return c.update(ctx, args)
	case "passwd":
		if len(args) != 2 {
			return usageError("passwd <old> <new>")
		}
		return c.api.ChangePassword(ctx, args[0], args[1])
	case "unregister":
		return c.api.DeleteAccount(ctx)
	case "users":
		page, err := optionalInt(args, 0)
		if err != nil {
			return err
		}
		result, err := c.api.Users(ctx, page)
		if err != nil {
			return err
		}
		c.renderUsers(result.Users, false)
		fmt.Fprintf(c.out, "page %d of %d\n", page+1, result.Pages)
	case "search":
		if len(args) == 0 {
			return usageError("search <query>")
		}
		users, err := c.api.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		c.renderUsers(users, false)
	case "chats":
		page, err := optionalInt(args, 0)
		if err != nil {
			return err
		}
		result, err := c.api.Chats(ctx, page)
		if err != nil {
			return err
		}
		c.renderChats(result.Chats)
		fmt.Fprintf(c.out, "page %d of %d\n", page+1, result.Pages)
	case "create":
		if len(args) < 2 {
			return usageError("create <title> <username>...")
		}
		chat, err := c.api.CreateChat(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		c.renderChats([]client.Chat{*chat})
	case "rename":
		chatID, err := idArg(args, 2, "rename <chatId> <title>")
		if err != nil {
			return err
		}
		chat, err := c.api.RenameChat(ctx, chatID, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "chat %d is now %q\n", chat.ID, chat.Title)
	case "add":
		chatID, err := idArg(args, 2, "add <chatId> <username>")
		if err != nil {
			return err
		}
		user, err := c.api.AddMember(ctx, chatID, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "added %s to chat %d\n", user.Username, chatID)
	case "remove":
		chatID, err := idArg(args, 2, "remove <chatId> <username>")
		if err != nil {
			return err
		}
		return c.api.RemoveMember(ctx, chatID, args[1])
	case "members":
		chatID, err := idArg(args, 1, "members <chatId>")
		if err != nil {
			return err
		}
		users, err := c.api.Members(ctx, chatID)
		if err != nil {
			return err
		}
		c.renderUsers(users, false)
	case "messages":
		if len(args) < 1 || len(args) > 2 {
			return usageError("messages <chatId> [page]")
		}
		chatID, err := idArg(args[:1], 1, "messages <chatId> [page]")
		if err != nil {
			return err
		}
		page, err := optionalInt(args[1:], 0)
		if err != nil {
			return err
		}
		result, err := c.api.Messages(ctx, chatID, page)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s (page %d of %d, newest page first)\n", result.Chat.Title, page+1, result.Pages)
		c.renderMessages(result.Messages)
	case "send":
		if len(args) < 2 {
			return usageError("send <chatId> <text>...")
		}
		chatID, err := idArg(args[:1], 1, "send <chatId> <text>...")
		if err != nil {
			return err
		}
		message, err := c.api.SendMessage(ctx, chatID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		c.renderMessages([]client.Message{*message})
	case "edit":
		if len(args) < 2 {
			return usageError("edit <messageId> <text>...")
		}
		messageID, err := idArg(args[:1], 1, "edit <messageId> <text>...")
		if err != nil {
			return err
		}
		message, err := c.api.EditMessage(ctx, messageID, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		c.renderMessages([]client.Message{*message})
	case "delete":
		messageID, err := idArg(args, 1, "delete <messageId>")
		if err != nil {
			return err
		}
		return c.api.DeleteMessage(ctx, messageID)
	default:
		return usageError(fmt.Sprintf("unknown command %q", command))
	}
	return nil
}

func (c *cli) update(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "new email")
	username := fs.String("username", "", "new username")
	name := fs.String("name", "", "new display name")
	if err := fs.Parse(args); err != nil {
		return usageError("update [-email E] [-username U] [-name N]")
	}

	var update client.ProfileUpdate
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "email":
			update.Email = email
		case "username":
			update.Username = username
		case "name":
			update.Name = name
		}
	})
	user, err := c.api.UpdateProfile(ctx, update)
	if err != nil {
		return err
	}
	c.renderUsers([]client.User{*user}, true)
	return nil
}

func idArg(args []string, want int, help string) (uint, error) {
	if len(args) != want {
		return 0, usageError(help)
	}
	id, err := strconv.ParseUint(args[0], 10, 0)
	if err != nil || id == 0 {
		return 0, usageError(fmt.Sprintf("%q is not a valid id", args[0]))
	}
	return uint(id), nil
}

func optionalInt(args []string, fallback int) (int, error) {
	if len(args) == 0 {
		return fallback, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, usageError(fmt.Sprintf("%q is not a page number", args[0]))
	}
	return n, nil
}

func (c *cli) table(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	return table
}

func (c *cli) renderUsers(users []client.User, withEmail bool) {
	header := []string{"ID", "Username", "Name"}
	if withEmail {
		header = append(header, "Email", "Created")
	}
	table := c.table(header)
	for _, u := range users {
		row := []string{strconv.FormatUint(uint64(u.ID), 10), u.Username, u.Name}
		if withEmail {
			row = append(row, u.Email, u.CreatedAt.Local().Format(time.DateTime))
		}
		table.Append(row)
	}
	table.Render()
}

func (c *cli) renderChats(chats []client.Chat) {
	table := c.table([]string{"ID", "Title", "Members", "Updated"})
	for _, chat := range chats {
		members := make([]string, 0, len(chat.Users))
		for _, u := range chat.Users {
			members = append(members, u.Username)
		}
		table.Append([]string{
			strconv.FormatUint(uint64(chat.ID), 10),
			chat.Title,
			strings.Join(members, ", "),
			chat.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	table.Render()
}

func (c *cli) renderMessages(messages []client.Message) {
	table := c.table([]string{"ID", "Time", "From", "Message"})
	for _, m := range messages {
		from := m.User.Username
		if !m.UpdatedAt.Equal(m.CreatedAt) {
			from += " (edited)"
		}
		table.Append([]string{
			strconv.FormatUint(uint64(m.ID), 10),
			m.CreatedAt.Local().Format(time.DateTime),
			from,
			m.Content,
		})
	}
	table.Render()
}
