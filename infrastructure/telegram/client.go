package telegram

import (
	"backup-courier/domain"
	"backup-courier/errors"
	"context"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const maxResponseBody = 64 * domain.KB

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BotClient talks to the Telegram Bot API, either the public cloud endpoint
// or a self-hosted server.
type BotClient struct {
	log          *slog.Logger
	endpoint     string
	textClient   *http.Client
	uploadClient *http.Client
}

func NewBotClient(log *slog.Logger, apiBase, token string, textTimeout, uploadTimeout time.Duration) *BotClient {
	return &BotClient{
		log:          log,
		endpoint:     fmt.Sprintf("%s/bot%s", strings.TrimRight(apiBase, "/"), token),
		textClient:   &http.Client{Timeout: textTimeout},
		uploadClient: &http.Client{Timeout: uploadTimeout},
	}
}

// SendText calls sendMessage with a url-encoded form.
func (c *BotClient) SendText(ctx context.Context, chatID string, text string) error {
	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/sendMessage", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sendMessage: %w", redact(err))
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.textClient.Do(request)
	if err != nil {
		return fmt.Errorf("sendMessage: %w", redact(err))
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(response.Body, maxResponseBody))

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: sendMessage returned %d", errors.ErrUnexpectedStatus, response.StatusCode)
	}
	return nil
}

// SendDocument streams doc as multipart/form-data to sendDocument. The body is never
// buffered in memory, so multi-gigabyte archives go through a pipe.
func (c *BotClient) SendDocument(ctx context.Context, chatID string, doc domain.Document) (int, string, error) {
	pipeReader, pipeWriter := io.Pipe()
	form := multipart.NewWriter(pipeWriter)

	overhead, err := formOverhead(form.Boundary(), chatID, doc)
	if err != nil {
		_ = pipeWriter.Close()
		return 0, "", fmt.Errorf("sendDocument: %w", err)
	}

	go func() {
		body := newProgressReader(c.log, doc.FileName, doc.Size, doc.Body)
		pipeWriter.CloseWithError(writeDocumentForm(form, chatID, doc, body))
	}()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/sendDocument", pipeReader)
	if err != nil {
		_ = pipeReader.CloseWithError(err)
		return 0, "", fmt.Errorf("sendDocument: %w", redact(err))
	}
	request.Header.Set("Content-Type", form.FormDataContentType())
	// Some Bot API servers reject chunked uploads, the total is known upfront
	request.ContentLength = overhead + doc.Size

	response, err := c.uploadClient.Do(request)
	if err != nil {
		return 0, "", fmt.Errorf("sendDocument: %w", redact(err))
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBody))
	if err != nil {
		return response.StatusCode, "", fmt.Errorf("sendDocument: reading response: %w", err)
	}
	return response.StatusCode, string(body), nil
}

func writeDocumentForm(form *multipart.Writer, chatID string, doc domain.Document, body io.Reader) error {
	fields := [][2]string{
		{"chat_id", chatID},
		{"caption", doc.Caption},
		{"disable_content_type_detection", "true"},
	}
	for _, field := range fields {
		if err := form.WriteField(field[0], field[1]); err != nil {
			return err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="document"; filename="%s"`, quoteEscaper.Replace(doc.FileName)))
	header.Set("Content-Type", doc.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return form.Close()
}

// formOverhead is the size of the multipart envelope around the document content.
func formOverhead(boundary, chatID string, doc domain.Document) (int64, error) {
	var counter byteCounter
	form := multipart.NewWriter(&counter)
	if err := form.SetBoundary(boundary); err != nil {
		return 0, err
	}
	if err := writeDocumentForm(form, chatID, doc, strings.NewReader("")); err != nil {
		return 0, err
	}
	return int64(counter), nil
}

type byteCounter int64

func (c *byteCounter) Write(p []byte) (int, error) {
	*c += byteCounter(len(p))
	return len(p), nil
}

// redact strips the request URL, which embeds the bot token, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if goerrors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
