package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-management/pkg/auth"
	md "github.com/Astemirdum/library-management/pkg/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestJwtAuthentication(t *testing.T) {
	t.Parallel()
	tokens := auth.NewTokenService("key", time.Hour)
	valid, err := tokens.Generate("leo")
	require.NoError(t, err)

	tests := []struct {
		name         string
		method       string
		header       string
		expectedCode int
		expectedBody string
	}{
		{
			name:         "ok",
			method:       http.MethodPost,
			header:       "Bearer " + valid,
			expectedCode: http.StatusOK,
			expectedBody: "leo",
		},
		{
			name:         "read passes without token",
			method:       http.MethodGet,
			expectedCode: http.StatusOK,
		},
		{
			name:         "err. no header",
			method:       http.MethodPost,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"No Authorization Header"}`,
		},
		{
			name:         "err. not bearer",
			method:       http.MethodDelete,
			header:       "Basic abc",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"Invalid Authorization Header"}`,
		},
		{
			name:         "err. bad token",
			method:       http.MethodPatch,
			header:       "Bearer abc",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"message":"JwtAccessDenied"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := echo.New()
			e.Any("/", func(c echo.Context) error {
				username, _ := auth.GetUsername(c.Request().Context())
				return c.String(http.StatusOK, username)
			}, md.WriteOnly(md.JwtAuthentication(tokens)))

			r := httptest.NewRequest(tt.method, "/", http.NoBody)
			if tt.header != "" {
				r.Header.Set(md.AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
			require.Equal(t, tt.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}
