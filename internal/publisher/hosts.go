package publisher

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Uploader re-hosts a processed image on a public host so the Graph API
// can fetch it. Hosts are tried in order: ImgBB when a key is
// configured, then 0x0.st, then PostImages.
type Uploader struct {
	imgbbKey string
	client   *http.Client
	logger   *zap.Logger

	imgbbURL      string
	zeroURL       string
	postimagesURL string
}

func NewUploader(imgbbKey string, client *http.Client, logger *zap.Logger) *Uploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{
		imgbbKey:      imgbbKey,
		client:        client,
		logger:        logger,
		imgbbURL:      "https://api.imgbb.com/1/upload",
		zeroURL:       "https://0x0.st",
		postimagesURL: "https://postimages.org/api/upload",
	}
}

// Upload returns the public URL of the re-hosted image, or the last
// host's error when every host refuses.
func (u *Uploader) Upload(ctx context.Context, jpeg []byte) (string, error) {
	type host struct {
		name string
		fn   func(context.Context, []byte) (string, error)
	}
	hosts := []host{}
	if u.imgbbKey != "" {
		hosts = append(hosts, host{"imgbb", u.uploadImgBB})
	}
	hosts = append(hosts,
		host{"0x0.st", u.uploadZero},
		host{"postimages", u.uploadPostImages},
	)

	var lastErr error
	for _, h := range hosts {
		url, err := h.fn(ctx, jpeg)
		if err == nil {
			u.logger.Info("image re-hosted", zap.String("host", h.name))
			return url, nil
		}
		u.logger.Warn("image host failed",
			zap.String("host", h.name),
			zap.Error(err),
		)
		lastErr = err
	}
	return "", fmt.Errorf("all image hosts failed: %w", lastErr)
}

func (u *Uploader) uploadImgBB(ctx context.Context, jpeg []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("image", base64.StdEncoding.EncodeToString(jpeg)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	url := u.imgbbURL + "?key=" + u.imgbbKey
	resp, err := u.multipartPost(ctx, url, w.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
		Data    struct {
			URL string `json:"url"`
		} `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode imgbb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		msg := "unknown error"
		if result.Error != nil {
			msg = result.Error.Message
		}
		return "", fmt.Errorf("imgbb upload failed: %s", msg)
	}
	return result.Data.URL, nil
}

func (u *Uploader) uploadZero(ctx context.Context, jpeg []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "instagram.jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(jpeg); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	resp, err := u.multipartPost(ctx, u.zeroURL, w.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("0x0.st upload failed: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(string(body))
	if !strings.HasPrefix(url, "http") {
		return "", fmt.Errorf("invalid response from 0x0.st")
	}
	return url, nil
}

var postimagesURLPattern = regexp.MustCompile(`https://i\.postimg\.cc/[^\s"<>]+`)

func (u *Uploader) uploadPostImages(ctx context.Context, jpeg []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("upload", "instagram-image.jpg")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(jpeg); err != nil {
		return "", err
	}
	if err := w.WriteField("optsize", "0"); err != nil {
		return "", err
	}
	if err := w.WriteField("expire", "0"); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	resp, err := u.multipartPost(ctx, u.postimagesURL, w.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("postimages upload failed: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	url := postimagesURLPattern.FindString(string(body))
	if url == "" {
		return "", fmt.Errorf("no image URL in postimages response")
	}
	return url, nil
}

func (u *Uploader) multipartPost(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return u.client.Do(req)
}
