// Package client is a Go client for the chat REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"
)

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email,omitempty"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Chat struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Users     []User    `json:"users"`
}

type Message struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	ChatID    uint      `json:"chatId"`
	UserID    uint      `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	User      User      `json:"user"`
}

type UserPage struct {
	Users []User `json:"users"`
	Pages int    `json:"pages"`
}

type ChatPage struct {
	Chats []Chat `json:"chats"`
	Pages int    `json:"pages"`
}

// MessagePage holds one page of a chat's history in reading order.
type MessagePage struct {
	Chat     Chat      `json:"chat"`
	Messages []Message `json:"messages"`
	Pages    int       `json:"pages"`
}

// ProfileUpdate changes only the non-nil fields.
type ProfileUpdate struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
	Name     *string `json:"name,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string       `json:"error"`
	Fields  []FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	parts := lo.Map(e.Fields, func(f FieldError, _ int) string { return f.Field + " " + f.Message })
	return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Client issues requests on behalf of the user held in its Session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a Client. httpClient may be nil.
func New(baseURL string, session *Session, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		session: session,
	}
}

func (c *Client) Session() *Session { return c.session }

type authResult struct {
	UserID uint   `json:"userId"`
	Token  string `json:"token"`
}

func (c *Client) Register(ctx context.Context, email, password, username, name string) (uint, error) {
	var out authResult
	err := c.do(ctx, http.MethodPost, "/users/register", map[string]string{
		"email":    email,
		"password": password,
		"username": username,
		"name":     name,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.UserID, c.session.Set(out.Token, out.UserID)
}

// Login accepts an email or a username as identifier.
func (c *Client) Login(ctx context.Context, identifier, password string) (uint, error) {
	var out authResult
	err := c.do(ctx, http.MethodPost, "/users/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.UserID, c.session.Set(out.Token, out.UserID)
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Profile(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/update", update, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/users/changePassword", map[string]string{
		"oldPassword": oldPassword,
		"newPassword": newPassword,
	}, nil)
}

// DeleteAccount removes the account and ends the session.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/users/delete", nil, nil); err != nil {
		return err
	}
	return c.session.Clear()
}

func (c *Client) Users(ctx context.Context, page int) (*UserPage, error) {
	var out UserPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/list/%d", page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Search(ctx context.Context, query string) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/search/"+url.PathEscape(query), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) Chats(ctx context.Context, page int) (*ChatPage, error) {
	var out ChatPage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chats/page/%d", page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChat(ctx context.Context, title string, usernames []string) (*Chat, error) {
	var out struct {
		Chat Chat `json:"chat"`
	}
	body := map[string]interface{}{"title": title, "usernames": usernames}
	if err := c.do(ctx, http.MethodPost, "/chats/create", body, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (c *Client) RenameChat(ctx context.Context, chatID uint, title string) (*Chat, error) {
	var out struct {
		Chat Chat `json:"chat"`
	}
	body := map[string]interface{}{"chatId": chatID, "newTitle": title}
	if err := c.do(ctx, http.MethodPut, "/chats/rename", body, &out); err != nil {
		return nil, err
	}
	return &out.Chat, nil
}

func (c *Client) AddMember(ctx context.Context, chatID uint, username string) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	body := map[string]interface{}{"chatId": chatID, "username": username}
	if err := c.do(ctx, http.MethodPut, "/chats/addUser", body, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) RemoveMember(ctx context.Context, chatID uint, username string) error {
	body := map[string]interface{}{"chatId": chatID, "username": username}
	return c.do(ctx, http.MethodPut, "/chats/removeUser", body, nil)
}

func (c *Client) Members(ctx context.Context, chatID uint) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/users", chatID), nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// Messages fetches page of a chat's history. Page 0 holds the newest
// messages; within the page they are returned oldest first.
func (c *Client) Messages(ctx context.Context, chatID uint, page int) (*MessagePage, error) {
	var out MessagePage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/chat/%d/%d", chatID, page), nil, &out); err != nil {
		return nil, err
	}
	out.Messages = lo.Reverse(out.Messages)
	return &out, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID uint, content string) (*Message, error) {
	var out struct {
		Message Message `json:"message"`
	}
	body := map[string]interface{}{"chatId": chatID, "content": content}
	if err := c.do(ctx, http.MethodPost, "/messages/create", body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *Client) EditMessage(ctx context.Context, messageID uint, content string) (*Message, error) {
	var out struct {
		Message Message `json:"message"`
	}
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/messages/%d", messageID), body, &out); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

func (c *Client) DeleteMessage(ctx context.Context, messageID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/messages/%d", messageID), nil, nil)
}

// do sends one request. A 401 on an authenticated request ends the session.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := c.session.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			if err := c.session.Clear(); err != nil {
				slog.Warn("failed to clear rejected session", "error", err)
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, path, err)
	}
	return nil
}
