package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestVerifyJWT(t *testing.T) {
	valid, err := SignJWT("secret", TokenClaims{Sub: "teacher-1", Role: RoleTeacher, Exp: time.Now().Add(time.Hour).Unix()})
	if err != nil {
		t.Fatalf("SignJWT error: %v", err)
	}
	expired, _ := SignJWT("secret", TokenClaims{Sub: "teacher-1", Exp: time.Now().Add(-time.Minute).Unix()})
	noSubject, _ := SignJWT("secret", TokenClaims{Role: RoleTeacher})

	tests := []struct {
		name    string
		secret  string
		token   string
		wantErr error
	}{
		{name: "valid", secret: "secret", token: valid},
		{name: "wrong secret", secret: "other", token: valid, wantErr: ErrInvalidToken},
		{name: "expired", secret: "secret", token: expired, wantErr: ErrTokenExpired},
		{name: "missing subject", secret: "secret", token: noSubject, wantErr: ErrInvalidToken},
		{name: "garbage", secret: "secret", token: "a.b", wantErr: ErrInvalidToken},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := VerifyJWT(tc.secret, tc.token)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("VerifyJWT error: %v", err)
			}
			if claims.Sub != "teacher-1" || claims.Role != RoleTeacher {
				t.Fatalf("unexpected claims: %#v", claims)
			}
		})
	}
}

func TestAuthJWTWithRequireRole(t *testing.T) {
	teacher, _ := SignJWT("secret", TokenClaims{Sub: "teacher-1", Role: RoleTeacher})
	student, _ := SignJWT("secret", TokenClaims{Sub: "student-1", Role: "student"})

	var gotTeacher string
	h := AuthJWT("secret")(RequireRole(RoleTeacher, RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTeacher = TeacherIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "teacher", header: "Bearer " + teacher, want: http.StatusNoContent},
		{name: "student forbidden", header: "Bearer " + student, want: http.StatusForbidden},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + teacher, want: http.StatusUnauthorized},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotTeacher = ""
			req := httptest.NewRequest(http.MethodGet, "/v1/classes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusNoContent && gotTeacher != "teacher-1" {
				t.Fatalf("teacher id = %q", gotTeacher)
			}
		})
	}
}
