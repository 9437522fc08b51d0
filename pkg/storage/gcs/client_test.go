package gcs

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) *http.Response

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func staticTokenSource() *tokenSource {
	return &tokenSource{fetch: func(context.Context) (string, time.Time, error) {
		return "token", time.Now().Add(time.Hour), nil
	}}
}

func TestUploadObjectSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "listings",
		publicBase:    "https://storage.googleapis.com",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodPost {
				t.Fatalf("expected POST, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			if req.Header.Get("Content-Type") != "image/jpeg" {
				t.Fatalf("unexpected content type %s", req.Header.Get("Content-Type"))
			}
			if got := req.URL.Query().Get("name"); got != "properties/p1/photo.jpg" {
				t.Fatalf("unexpected object name %q", got)
			}
			body, _ := io.ReadAll(req.Body)
			if string(body) != "jpeg-bytes" {
				t.Fatalf("unexpected body %q", string(body))
			}
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(`{"name":"properties/p1/photo.jpg"}`)),
				Header:     http.Header{},
			}
		})},
	}

	urlStr, err := client.UploadObject(context.Background(), "", "properties/p1/photo.jpg", "image/jpeg", []byte("jpeg-bytes"))
	if err != nil {
		t.Fatalf("UploadObject: %v", err)
	}
	if urlStr != "https://storage.googleapis.com/listings/properties/p1/photo.jpg" {
		t.Fatalf("unexpected url %q", urlStr)
	}
}

func TestUploadObjectServerError(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "listings",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Status:     "503 Service Unavailable",
				Body:       io.NopCloser(strings.NewReader("backend error")),
				Header:     http.Header{},
			}
		})},
	}

	if _, err := client.UploadObject(context.Background(), "", "object", "image/png", nil); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestUploadObjectValidation(t *testing.T) {
	t.Parallel()

	client := &Client{tokenSource: staticTokenSource()}
	if _, err := client.UploadObject(context.Background(), "", "object", "image/png", nil); err == nil {
		t.Fatal("expected error without bucket")
	}

	client.defaultBucket = "listings"
	if _, err := client.UploadObject(context.Background(), "", "", "image/png", nil); err == nil {
		t.Fatal("expected error without object path")
	}
}

func TestDeleteObjectSuccess(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "listings",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			if req.Method != http.MethodDelete {
				t.Fatalf("expected DELETE, got %s", req.Method)
			}
			if req.Header.Get("Authorization") != "Bearer token" {
				t.Fatalf("unexpected auth %s", req.Header.Get("Authorization"))
			}
			return &http.Response{
				StatusCode: http.StatusNoContent,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.DeleteObject(context.Background(), "listings", "properties/p1/photo.jpg"); err != nil {
		t.Fatalf("DeleteObject: %v", err)
	}
}

func TestDeleteObjectNotFound(t *testing.T) {
	t.Parallel()

	client := &Client{
		defaultBucket: "listings",
		tokenSource:   staticTokenSource(),
		httpClient: &http.Client{Transport: roundTripFunc(func(req *http.Request) *http.Response {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       io.NopCloser(strings.NewReader("")),
				Header:     http.Header{},
			}
		})},
	}

	if err := client.DeleteObject(context.Background(), "listings", "properties/p1/photo.jpg"); err != nil {
		t.Fatalf("DeleteObject not found should succeed: %v", err)
	}
}

func TestSignedURLSuccess(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	client := &Client{
		defaultBucket: "listings",
		serviceAccount: &serviceAccountInfo{
			clientEmail: "signer@example.com",
			privateKey:  key,
		},
	}

	object := "properties/p1/photo.png"
	contentType := "image/png"
	urlStr, err := client.SignedURL("listings", object, contentType, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignedURL returned error: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed url: %v", err)
	}
	if !strings.EqualFold(parsed.Host, "storage.googleapis.com") {
		t.Fatalf("unexpected host %s", parsed.Host)
	}

	values := parsed.Query()
	if got := values.Get("GoogleAccessId"); got != "signer@example.com" {
		t.Fatalf("unexpected GoogleAccessId %q", got)
	}

	expireParam := values.Get("Expires")
	if expireParam == "" {
		t.Fatal("Expires missing")
	}
	expiration, err := strconv.ParseInt(expireParam, 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}

	signature := values.Get("Signature")
	if signature == "" {
		t.Fatal("signature missing")
	}
	rawSig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	data := []byte("PUT\n\n" + contentType + "\n" + strconv.FormatInt(expiration, 10) + "\n/listings/" + object)
	hash := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify signature: %v", err)
	}
}

func TestSignedReadURLSuccess(t *testing.T) {
	t.Parallel()

	key := mustGenerateKey(t)
	client := &Client{
		defaultBucket: "listings",
		serviceAccount: &serviceAccountInfo{
			clientEmail: "signer@example.com",
			privateKey:  key,
		},
	}

	object := "properties/p1/brochure.pdf"
	urlStr, err := client.SignedReadURL("listings", object, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignedReadURL returned error: %v", err)
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		t.Fatalf("parse signed read url: %v", err)
	}

	values := parsed.Query()
	expiration, err := strconv.ParseInt(values.Get("Expires"), 10, 64)
	if err != nil {
		t.Fatalf("parse expires: %v", err)
	}
	rawSig, err := base64.StdEncoding.DecodeString(values.Get("Signature"))
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}

	data := []byte("GET\n\n\n" + strconv.FormatInt(expiration, 10) + "\n/listings/" + object)
	hash := sha256.Sum256(data)
	if err := rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA256, hash[:], rawSig); err != nil {
		t.Fatalf("verify read signature: %v", err)
	}
}

func TestSignedURLErrors(t *testing.T) {
	t.Parallel()

	client := &Client{
		serviceAccount: &serviceAccountInfo{
			clientEmail: "test@example.com",
			privateKey:  mustGenerateKey(t),
		},
		defaultBucket: "listings",
	}

	cases := []struct {
		name              string
		bucket            string
		object            string
		contentType       string
		expires           time.Duration
		forceClearDefault bool
	}{
		{"missing bucket", "", "object", "image/png", time.Minute, true},
		{"missing object", "listings", "", "image/png", time.Minute, false},
		{"missing contentType", "listings", "object", "", time.Minute, false},
		{"negative ttl", "listings", "object", "image/png", -time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			origBucket := client.defaultBucket
			if tc.forceClearDefault {
				client.defaultBucket = ""
			}
			defer func() {
				client.defaultBucket = origBucket
			}()
			if _, err := client.SignedURL(tc.bucket, tc.object, tc.contentType, tc.expires); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}

	emptyClient := &Client{}
	if _, err := emptyClient.SignedURL("", "object", "image/png", time.Minute); err == nil {
		t.Fatal("expected error without service account")
	}
}

func mustGenerateKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}
	return key
}
