package apiclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"webshop/internal/apperr"
	"webshop/internal/models"

	"github.com/google/uuid"
)

func (c *Client) ListProductImages(ctx context.Context, productID uuid.UUID) ([]models.Image, error) {
	var out []models.Image
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/products/%s/images", productID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var out models.Image
	if err := c.do(ctx, http.MethodGet, idPath("/api/v1/images/%s", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends file as the multipart "file" field. The API checks type and size.
func (c *Client) UploadImage(ctx context.Context, productID uuid.UUID, fileName string, file io.Reader, isPrimary bool) (*models.Image, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not build upload", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, apperr.Wrap(apperr.KindBadRequest, "could not read upload", err)
	}
	if err := mw.WriteField("is_primary", strconv.FormatBool(isPrimary)); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not build upload", err)
	}
	if err := mw.Close(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not build upload", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, idPath("/api/v1/products/%s/images", productID), nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.Image
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImageContent streams the stored binary. The caller closes the body.
func (c *Client) ImageContent(ctx context.Context, id uuid.UUID) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, idPath("/api/v1/images/%s/content", id), nil, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnavailable, "the shop API is unreachable", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", decodeFault(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, idPath("/api/v1/images/%s", id), nil, nil, nil)
}
