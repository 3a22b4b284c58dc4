package mws

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/beevik/etree"
)

// Response wraps an MWS reply. Non-2xx replies are ordinary responses with
// Success() == false.
type Response struct {
	statusCode int
	header     http.Header
	body       []byte

	once sync.Once
	doc  *etree.Document
	err  error
}

// NewResponse builds a Response from a status code and raw body.
func NewResponse(statusCode int, header http.Header, body []byte) *Response {
	return &Response{statusCode: statusCode, header: header, body: body}
}

func (r *Response) Body() string {
	return string(r.body)
}

// Code returns the status code as a string, e.g. "200".
func (r *Response) Code() string {
	return strconv.Itoa(r.statusCode)
}

func (r *Response) StatusCode() int {
	return r.statusCode
}

func (r *Response) Header() http.Header {
	return r.header
}

// Success reports whether the status code is 200.
func (r *Response) Success() bool {
	return r.statusCode == http.StatusOK
}

// XML parses the body on first use and caches the result.
func (r *Response) XML() (*etree.Document, error) {
	r.once.Do(func() {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(r.body); err != nil {
			r.err = fmt.Errorf("failed to parse response XML: %w", err)
			return
		}
		if doc.Root() == nil {
			r.err = fmt.Errorf("failed to parse response XML: no root element")
			return
		}
		r.doc = doc
	})
	return r.doc, r.err
}

// GetElement returns the text of child under the last element matching path.
func (r *Response) GetElement(path, child string) (string, error) {
	doc, err := r.XML()
	if err != nil {
		return "", err
	}

	p, err := etree.CompilePath(path)
	if err != nil {
		return "", fmt.Errorf("invalid element path %q: %w", path, err)
	}

	matches := doc.FindElementsPath(p)
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, path)
	}

	el := matches[len(matches)-1].FindElement(child)
	if el == nil {
		return "", fmt.Errorf("%w: %s/%s", ErrElementNotFound, path, child)
	}
	return el.Text(), nil
}
