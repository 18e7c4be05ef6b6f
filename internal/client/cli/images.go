package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"text/tabwriter"
	"time"
)

type image struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	URL          string    `json:"url"`
	Format       string    `json:"format"`
	SizeBytes    int64     `json:"size_bytes"`
	CreatedAt    time.Time `json:"created_at"`
}

type imageResponse struct {
	Message string `json:"message"`
	Image   *image `json:"image"`
}

func (a *App) printImage(img *image) {
	if img == nil {
		return
	}
	fmt.Fprintf(a.out, "ID:      %s\n", img.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", img.OriginalName)
	fmt.Fprintf(a.out, "Format:  %s\n", img.Format)
	fmt.Fprintf(a.out, "Size:    %d bytes\n", img.SizeBytes)
	fmt.Fprintf(a.out, "URL:     %s\n", img.URL)
	fmt.Fprintf(a.out, "Created: %s\n", img.CreatedAt.Local().Format(time.DateTime))
}

func imageID(args []string) (string, error) {
	if len(args) == 0 || args[0] == "" {
		return "", errors.New("image id is required")
	}
	return url.PathEscape(args[0]), nil
}

func (a *App) upload(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		return errors.New("usage: upload <file>")
	}

	var resp imageResponse
	if err := a.api.UploadFile(ctx, http.MethodPost, "/api/images/upload", "image", args[0], nil, &resp); err != nil {
		return err
	}
	if resp.Message != "" {
		fmt.Fprintln(a.out, resp.Message)
	}
	a.printImage(resp.Image)
	return nil
}

func (a *App) images(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	var resp struct {
		Images []image `json:"images"`
	}
	if err := a.api.DoJSON(ctx, http.MethodGet, "/api/images", nil, &resp); err != nil {
		return err
	}

	if len(resp.Images) == 0 {
		fmt.Fprintln(a.out, "No images")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tSIZE\tCREATED")
	for _, img := range resp.Images {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", img.ID, img.OriginalName, img.Format, img.SizeBytes,
			img.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := imageID(args)
	if err != nil {
		return err
	}

	var resp imageResponse
	if err := a.api.DoJSON(ctx, http.MethodGet, "/api/images/"+id, nil, &resp); err != nil {
		return err
	}
	a.printImage(resp.Image)
	return nil
}

func (a *App) delete(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	id, err := imageID(args)
	if err != nil {
		return err
	}

	var resp messageResponse
	if err := a.api.DoJSON(ctx, http.MethodDelete, "/api/images/"+id, nil, &resp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Message)
	return nil
}
