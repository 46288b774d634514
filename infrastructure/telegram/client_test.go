package telegram

import (
	"backup-courier/domain"
	"backup-courier/errors"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const token = "123456:SECRET"

func newClient(serverURL string) *BotClient {
	return NewBotClient(logs.GetLoggerFromLevel(slog.LevelDebug), serverURL+"/", token, time.Second, 5*time.Second)
}

func TestBotClient_SendDocument(t *testing.T) {
	t.Run("Should stream a multipart document", func(t *testing.T) {
		req := require.New(t)
		payload := bytes.Repeat([]byte("0123456789"), 10_000)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req.Equal(http.MethodPost, r.Method)
			req.Equal("/bot"+token+"/sendDocument", r.URL.Path)
			// Sent with a known length, never chunked
			req.Empty(r.TransferEncoding)
			raw, err := io.ReadAll(r.Body)
			req.NoError(err)
			req.Equal(int64(len(raw)), r.ContentLength)
			r.Body = io.NopCloser(bytes.NewReader(raw))
			req.NoError(r.ParseMultipartForm(1 << 20))
			req.Equal("-100200", r.FormValue("chat_id"))
			req.Equal("backup.zip (part 1/2)", r.FormValue("caption"))
			req.Equal("true", r.FormValue("disable_content_type_detection"))

			file, header, err := r.FormFile("document")
			req.NoError(err)
			defer file.Close()
			req.Equal("backup.zip.part1", header.Filename)
			req.Equal("application/octet-stream", header.Header.Get("Content-Type"))
			received, err := io.ReadAll(file)
			req.NoError(err)
			req.Equal(payload, received)

			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		status, body, err := newClient(server.URL).SendDocument(context.Background(), "-100200", domain.Document{
			FileName:    "backup.zip.part1",
			Caption:     "backup.zip (part 1/2)",
			ContentType: "application/octet-stream",
			Size:        int64(len(payload)),
			Body:        bytes.NewReader(payload),
		})

		req.NoError(err)
		req.Equal(http.StatusOK, status)
		req.Equal(`{"ok":true}`, body)
	})

	t.Run("Should return the status and body of a rejected upload", func(t *testing.T) {
		req := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Request Entity Too Large"}`))
		}))
		defer server.Close()

		status, body, err := newClient(server.URL).SendDocument(context.Background(), "42", domain.Document{
			FileName: "big.zip",
			Size:     4,
			Body:     strings.NewReader("data"),
		})

		req.NoError(err)
		req.Equal(http.StatusRequestEntityTooLarge, status)
		req.Contains(body, "Too Large")
	})

	t.Run("Should not leak the token in transport errors", func(t *testing.T) {
		req := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		serverURL := server.URL
		server.Close()

		_, _, err := newClient(serverURL).SendDocument(context.Background(), "42", domain.Document{
			FileName: "a.zip",
			Size:     1,
			Body:     strings.NewReader("a"),
		})

		req.Error(err)
		req.NotContains(err.Error(), "SECRET")
	})
}

func TestBotClient_SendText(t *testing.T) {
	t.Run("Should post a url-encoded message", func(t *testing.T) {
		req := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req.Equal("/bot"+token+"/sendMessage", r.URL.Path)
			req.NoError(r.ParseForm())
			req.Equal("42", r.PostForm.Get("chat_id"))
			req.Equal("📦 Backup detected: a.zip", r.PostForm.Get("text"))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		req.NoError(newClient(server.URL).SendText(context.Background(), "42", "📦 Backup detected: a.zip"))
	})

	t.Run("Should fail on a non OK status", func(t *testing.T) {
		req := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := newClient(server.URL).SendText(context.Background(), "42", "hello")
		req.ErrorIs(err, errors.ErrUnexpectedStatus)
	})
}

func TestProgressReader(t *testing.T) {
	req := require.New(t)
	reader := newProgressReader(logs.GetLoggerFromLevel(slog.LevelDebug), "a.zip", 100, bytes.NewReader(make([]byte, 100)))

	buf := make([]byte, 25)
	_, err := reader.Read(buf)
	req.NoError(err)
	req.Equal(20, reader.reported)

	_, err = io.ReadAll(reader)
	req.NoError(err)
	req.Equal(100, reader.reported)
	req.Equal(int64(100), reader.read)
}
