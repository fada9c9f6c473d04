package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-management/library/internal/errs"
)

func TestParseDate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "ok", in: "1828-09-09", want: NewDate(1828, time.September, 9)},
		{name: "err. format", in: "09.09.1828", wantErr: true},
		{name: "err. no such day", in: "2024-02-30", wantErr: true},
		{name: "err. empty", in: "", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got.Time))
		})
	}
}

func TestDate_JSON(t *testing.T) {
	t.Parallel()
	author := Author{ID: 1, BirthDate: DateFromTime(&time.Time{})}
	b, err := json.Marshal(author)
	require.NoError(t, err)
	require.Equal(t, `{"id":1,"first_name":null,"last_name":null,"birth_date":"0001-01-01"}`, string(b))

	var req AuthorRequest
	require.NoError(t, json.Unmarshal([]byte(`{"first_name":"Leo","birth_date":"1828-09-09"}`), &req))
	require.Equal(t, "1828-09-09", req.BirthDate.String())
	require.Nil(t, req.LastName)

	require.NoError(t, json.Unmarshal([]byte(`{"birth_date":null}`), &req))

	err = json.Unmarshal([]byte(`{"birth_date":"yesterday"}`), &req)
	require.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestDate_TimePtr(t *testing.T) {
	t.Parallel()
	var d *Date
	require.Nil(t, d.TimePtr())
	require.Nil(t, DateFromTime(nil))

	ts := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
	got := DateFromTime(&ts)
	require.Equal(t, "2024-03-01", got.String())
	require.Equal(t, NewDate(2024, time.March, 1).Time, *got.TimePtr())
}
