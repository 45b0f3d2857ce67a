package internal

// Header is a single response header passed to the send helpers.
type Header struct {
	Key   string
	Value string
}

// Content type headers for the send helpers.
var (
	ContentHTML       = Header{Key: "Content-Type", Value: "text/html"}
	ContentCSS        = Header{Key: "Content-Type", Value: "text/css"}
	ContentJavaScript = Header{Key: "Content-Type", Value: "application/javascript"}
	ContentJSON       = Header{Key: "Content-Type", Value: "application/json"}
)

var contentText = Header{Key: "Content-Type", Value: "text/plain; charset=utf-8"}
