package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type clientConfig struct {
	Addr    string
	Timeout time.Duration
}

func (c *clientConfig) client() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}

// printJSON GETs path and pretty-prints the JSON body. A non-2xx status is
// reported as an error after the body is printed, so failed health checks
// still show the payload.
func (c *clientConfig) printJSON(path string) error {
	resp, err := c.client().Get(strings.TrimRight(c.Addr, "/") + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if json.Indent(&out, b, "", "  ") == nil {
		fmt.Println(out.String())
	} else {
		fmt.Println(string(b))
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%s returned %d", path, resp.StatusCode)
	}
	return nil
}

// waitReady polls /readyz until the daemon answers 200 or Timeout elapses.
func (c *clientConfig) waitReady() error {
	url := strings.TrimRight(c.Addr, "/") + "/readyz"
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()
	client := &http.Client{Timeout: 2 * time.Second}
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				fmt.Println("ready")
				return nil
			}
		}
		select {
		case <-time.After(1 * time.Second):
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s to return 200", url)
		}
	}
}

// uploadContentType guesses the MIME type from the file extension, falling
// back to image/jpeg so the daemon's content-type check sees an image.
func uploadContentType(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}

// remove uploads the image to /remove-background and writes the result.
func (c *clientConfig) remove(inPath, outPath, format string, quality int) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(inPath)))
	hdr.Set("Content-Type", uploadContentType(inPath))
	fw, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	if _, err := fw.Write(data); err != nil {
		return err
	}
	if err := mw.WriteField("output_format", format); err != nil {
		return err
	}
	if err := mw.WriteField("quality", strconv.Itoa(quality)); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(c.Addr, "/")+"/remove-background", &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
	}

	if outPath == "" {
		stem := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
		ext := strings.ToLower(format)
		outPath = filepath.Join(filepath.Dir(inPath), "no_bg_"+stem+"."+ext)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%s bytes, processed in %s)\n",
		outPath, resp.Header.Get("X-Output-Size"), resp.Header.Get("X-Processing-Time"))
	return nil
}
