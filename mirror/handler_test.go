// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mirror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

type testCase struct {
	name          string
	opts          Opts
	target        string
	wantMediaType string

	onImage func(*testing.T, image.Image)
}

func (tc *testCase) validatePart(t *testing.T, part *multipart.Part) {
	t.Helper()

	contentLength, err := strconv.Atoi(part.Header.Get("Content-Length"))
	if err != nil {
		t.Errorf("Parsing Content-Length header failed: %v", err)
	}

	decode := func(io.Reader) (image.Image, error) {
		return nil, errors.New("unknown image format")
	}
	if mediaType, _, err := mime.ParseMediaType(part.Header.Get("Content-Type")); err != nil {
		t.Errorf("ParseMediaType() failed: %v", err)
	} else if mediaType != tc.wantMediaType {
		t.Errorf("Got content-type %q, want %q", mediaType, tc.wantMediaType)
	} else if mediaType == "image/png" {
		decode = png.Decode
	} else if mediaType == "image/jpeg" {
		decode = jpeg.Decode
	}

	zoom := tc.opts.Zoom
	if zoom == 0 {
		zoom = 4
	}
	if content, err := io.ReadAll(part); err != nil {
		t.Errorf("ReadAll() failed: %v", err)
	} else if got, want := len(content), contentLength; got != want {
		t.Errorf("Read %d bytes, Content-Length header is %d", got, want)
	} else if img, err := decode(bytes.NewReader(content)); err != nil {
		t.Errorf("Decoding image failed: %v", err)
	} else if got, want := img.Bounds().Size(), (image.Point{tc.opts.W * zoom, tc.opts.H * zoom}); got != want {
		t.Errorf("Got image size %v, want %v", got, want)
	} else if tc.onImage != nil {
		tc.onImage(t, img)
	}

	if err := part.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
}

func (tc *testCase) validateResponse(t *testing.T, resp *http.Response) {
	t.Helper()

	if got, want := resp.StatusCode, http.StatusOK; got != want {
		t.Errorf("ServeHTTP() status %d, want %d", got, want)
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("ParseMediaType() failed: %v", err)
	}
	if got, want := mediaType, "multipart/x-mixed-replace"; got != want {
		t.Fatalf("Content-Type is %q, want %q", got, want)
	}
	boundary := params["boundary"]
	if len(boundary) < 50 {
		t.Fatalf("Insufficient boundary: %s", boundary)
	}
	mr := multipart.NewReader(resp.Body, boundary)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !strings.HasSuffix(err.Error(), " EOF") {
				t.Errorf("NextPart() failed: %v", err)
			}
			break
		}
		tc.validatePart(t, part)
	}
}

func TestMultipartResponse(t *testing.T) {
	for _, tc := range []testCase{
		{
			name:          "defaults",
			opts:          Opts{W: 128, H: 64},
			target:        "/",
			wantMediaType: "image/png",
		},
		{
			name:          "default JPEG",
			opts:          Opts{W: 128, H: 32, Zoom: 2, Format: JPEG},
			target:        "/",
			wantMediaType: "image/jpeg",
		},
		{
			name:          "format param PNG",
			opts:          Opts{W: 64, H: 48, Format: JPEG},
			target:        "/?format=png",
			wantMediaType: "image/png",
		},
		{
			name:          "format param JPEG",
			opts:          Opts{W: 8, H: 8, Zoom: 1},
			target:        "/?format=jpeg",
			wantMediaType: "image/jpeg",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			t.Cleanup(cancel)

			d := New(&tc.opts)
			srv := httptest.NewServer(d)
			t.Cleanup(srv.Close)
			t.Cleanup(srv.CloseClientConnections)

			quit := make(chan struct{})
			remaining := 5
			tc.onImage = func(*testing.T, image.Image) {
				if remaining == 0 {
					tc.onImage = nil
					defer close(quit)
					if err := d.Halt(); err != nil {
						t.Errorf("Halt() failed: %v", err)
					}
				} else {
					remaining--
				}
			}

			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; ; i++ {
					src := image.Image(image.Black)
					if i%2 == 1 {
						src = image.White
					}
					if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
						t.Errorf("Draw() failed: %v", err)
					}
					select {
					case <-quit:
						return
					case <-ctx.Done():
						return
					case <-time.After(10 * time.Millisecond):
					}
				}
			}()

			if resp, err := srv.Client().Get(srv.URL + tc.target); err != nil {
				t.Errorf("Get() failed: %v", err)
			} else {
				tc.validateResponse(t, resp)
				resp.Body.Close()
			}
			if t.Failed() {
				cancel()
			}
			wg.Wait()
		})
	}
}

func TestRequestStatus(t *testing.T) {
	for _, tc := range []struct {
		method     string
		target     string
		wantStatus int
	}{
		{target: "/?format=", wantStatus: http.StatusOK},
		{target: "/?format=bmp", wantStatus: http.StatusBadRequest},
		{method: http.MethodPost, target: "/", wantStatus: http.StatusMethodNotAllowed},
	} {
		t.Run(fmt.Sprint(tc), func(t *testing.T) {
			d := New(&Opts{W: 16, H: 16})

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			t.Cleanup(cancel)

			srv := httptest.NewServer(d)
			t.Cleanup(srv.Close)
			t.Cleanup(srv.CloseClientConnections)

			req, err := http.NewRequestWithContext(ctx, tc.method, srv.URL+tc.target, nil)
			if err != nil {
				t.Fatalf("NewRequest() failed: %v", err)
			}
			resp, err := srv.Client().Do(req)
			if err != nil {
				t.Fatalf("Do() failed: %v", err)
			}
			defer resp.Body.Close()
			if got, want := resp.StatusCode, tc.wantStatus; got != want {
				t.Errorf("Request for %s %s returned status %d (%s), want %d",
					req.Method, req.URL.String(), got, resp.Status, want)
			}
		})
	}
}
