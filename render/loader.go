package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/milk9111/arenapreview/assets"
)

// readSource fetches the raw bytes for ref: http(s) URLs over the network,
// anything else from the asset dir on disk, then the embedded assets, then
// ref itself as a path.
func (t *Toolkit) readSource(ctx context.Context, ref string) ([]byte, error) {
	if isURL(ref) {
		return t.fetch(ctx, ref)
	}
	if t.assetDir != "" {
		if b, err := os.ReadFile(filepath.Join(t.assetDir, filepath.FromSlash(ref))); err == nil {
			return b, nil
		}
	}
	if t.embedded {
		if b, err := assets.LoadFile(ref); err == nil {
			return b, nil
		}
	}
	b, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("image %s not found", ref)
	}
	return b, nil
}

func (t *Toolkit) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func decode(ref string, b []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ref, err)
	}
	return img, nil
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
