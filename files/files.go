// Package files resolves file backed response bodies.
package files

import (
	"context"
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/utils"
)

const octetStream = "application/octet-stream"

type (
	// Content is a resolved file
	Content struct {
		Data        []byte
		ContentType string
	}

	// Resolver turns a file name into its content
	Resolver interface {
		Resolve(ctx context.Context, name string) (Content, error)
	}

	// DirResolver reads files from disk, relative names are taken from its base directory
	DirResolver struct {
		dir string
	}
)

// NewDirResolver returns a resolver rooted at dir
func NewDirResolver(dir string) *DirResolver {
	return &DirResolver{dir: dir}
}

// Resolve reads the named file and infers its content type
func (r *DirResolver) Resolve(ctx context.Context, name string) (Content, error) {
	if err := ctx.Err(); err != nil {
		return Content{}, err
	}

	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.dir, path)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return Content{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return Content{Data: data, ContentType: ContentType(path, data)}, nil
}

// ContentType infers a content type from the file extension, sniffing the data when the extension is unknown
func ContentType(name string, data []byte) string {
	if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
		if mime := utils.GetMIME(ext); mime != "" && mime != octetStream {
			return mime
		}
	}

	return mimetype.Detect(data).String()
}
