// Package netx contains small network helpers used by the client: uploading
// photo bytes to a presigned object-storage URL and a link-layer check for
// the connectivity prober.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

var uploadClient = &http.Client{Timeout: 2 * time.Minute}

// UploadToPresignedURL PUTs body to a presigned S3 URL. An empty contentType
// is sent as application/octet-stream.
func UploadToPresignedURL(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := uploadClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

// interfacesFn is a seam for tests.
var interfacesFn = net.Interfaces

// HasActiveInterface reports whether any non-loopback interface is up.
func HasActiveInterface() bool {
	ifaces, err := interfacesFn()
	if err != nil {
		return false
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		if ifc.Flags&net.FlagUp != 0 {
			return true
		}
	}
	return false
}
