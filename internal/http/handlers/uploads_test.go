package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"studio/internal/domain"
	"studio/internal/providers/mux"
)

func TestCreateUpload(t *testing.T) {
	media := &fakeMedia{session: domain.UploadSession{UploadURL: "https://up.example/abc", UploadID: "job_1"}}
	app := NewApp(newMemClasses(), newMemCourses(), media, nil, nil)

	req := asTeacher(httptest.NewRequest(http.MethodPost, "/v1/uploads", body(`{"corsOrigin":"https://studio.example"}`)), "")
	rr := httptest.NewRecorder()
	app.CreateUpload(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["uploadUrl"] != "https://up.example/abc" || got["uploadId"] != "job_1" {
		t.Fatalf("unexpected response %v", got)
	}
	if len(media.origins) != 1 || media.origins[0] != "https://studio.example" {
		t.Fatalf("origins = %v", media.origins)
	}
	if len(media.owners) != 1 || media.owners[0] != teacherA {
		t.Fatalf("owners = %v", media.owners)
	}
}

func TestCreateUploadFallsBackToOriginHeader(t *testing.T) {
	media := &fakeMedia{session: domain.UploadSession{UploadURL: "u", UploadID: "id"}}
	app := NewApp(newMemClasses(), newMemCourses(), media, nil, nil)

	req := asTeacher(httptest.NewRequest(http.MethodPost, "/v1/uploads", body(`{}`)), "")
	req.Header.Set("Origin", "https://studio.example")
	app.CreateUpload(httptest.NewRecorder(), req)

	if media.origins[0] != "https://studio.example" {
		t.Fatalf("origin = %q", media.origins[0])
	}
}

func TestCreateUploadFailures(t *testing.T) {
	tests := []struct {
		name    string
		media   *fakeMedia
		payload string
		want    int
	}{
		{name: "rejected", media: &fakeMedia{err: &mux.APIError{StatusCode: 400, Message: "invalid cors_origin"}}, payload: `{"corsOrigin":"x"}`, want: http.StatusBadGateway},
		{name: "unconfigured", media: &fakeMedia{err: mux.ErrMissingCredentials}, payload: `{}`, want: http.StatusServiceUnavailable},
		{name: "incomplete session", media: &fakeMedia{session: domain.UploadSession{UploadID: "job_1"}}, payload: `{}`, want: http.StatusBadGateway},
		{name: "bad payload", media: &fakeMedia{}, payload: `{`, want: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp(newMemClasses(), newMemCourses(), tc.media, nil, nil)
			req := asTeacher(httptest.NewRequest(http.MethodPost, "/v1/uploads", body(tc.payload)), "")
			rr := httptest.NewRecorder()
			app.CreateUpload(rr, req)

			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			var got map[string]string
			if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got["error"] == "" {
				t.Fatalf("expected error message, got %v", got)
			}
		})
	}
}

func TestCreateUploadRequiresTeacher(t *testing.T) {
	app := NewApp(newMemClasses(), newMemCourses(), &fakeMedia{}, nil, nil)
	rr := httptest.NewRecorder()
	app.CreateUpload(rr, httptest.NewRequest(http.MethodPost, "/v1/uploads", body(`{}`)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestUploadStatus(t *testing.T) {
	media := &fakeMedia{state: domain.UploadState{Status: domain.RemoteStatusProcessing, AssetID: "asset_9", Owner: teacherA}}
	app := NewApp(newMemClasses(), newMemCourses(), media, nil, nil)

	req := asTeacher(httptest.NewRequest(http.MethodGet, "/v1/uploads/status?uploadId=job_1", nil), "")
	rr := httptest.NewRecorder()
	app.UploadStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "processing" || got["assetId"] != "asset_9" {
		t.Fatalf("unexpected body %v", got)
	}
	if _, ok := got["playbackId"]; ok {
		t.Fatal("playbackId should be omitted when empty")
	}
	if len(got) != 2 {
		t.Fatalf("owner must not be serialized: %v", got)
	}
	if media.statusIDs[0] != "job_1" {
		t.Fatalf("polled %v", media.statusIDs)
	}
}

func TestUploadStatusErrors(t *testing.T) {
	app := NewApp(newMemClasses(), newMemCourses(), &fakeMedia{}, nil, nil)
	rr := httptest.NewRecorder()
	app.UploadStatus(rr, asTeacher(httptest.NewRequest(http.MethodGet, "/v1/uploads/status", nil), ""))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("missing uploadId: status = %d", rr.Code)
	}

	app.Media = &fakeMedia{err: &mux.APIError{StatusCode: http.StatusNotFound}}
	rr = httptest.NewRecorder()
	app.UploadStatus(rr, asTeacher(httptest.NewRequest(http.MethodGet, "/v1/uploads/status?uploadId=nope", nil), ""))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown upload: status = %d", rr.Code)
	}

	app.Media = &fakeMedia{err: errors.New("dial tcp: timeout")}
	rr = httptest.NewRecorder()
	app.UploadStatus(rr, asTeacher(httptest.NewRequest(http.MethodGet, "/v1/uploads/status?uploadId=job_1", nil), ""))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("transport failure: status = %d", rr.Code)
	}
}

func TestUploadStatusHidesForeignUploads(t *testing.T) {
	tests := []struct {
		name  string
		owner string
	}{
		{name: "other teacher", owner: "0d9c8b7a-6f5e-4d3c-8b2a-190817161514"},
		{name: "no owner recorded", owner: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			media := &fakeMedia{state: domain.UploadState{Status: domain.RemoteStatusAssetCreated, AssetID: "asset_9", PlaybackID: "pb_9", Owner: tc.owner}}
			app := NewApp(newMemClasses(), newMemCourses(), media, nil, nil)

			rr := httptest.NewRecorder()
			app.UploadStatus(rr, asTeacher(httptest.NewRequest(http.MethodGet, "/v1/uploads/status?uploadId=job_1", nil), ""))

			if rr.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rr.Code)
			}
			if strings.Contains(rr.Body.String(), "pb_9") {
				t.Fatalf("foreign upload leaked: %s", rr.Body.String())
			}
		})
	}
}
