package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/FaridHajiyevAZ/KomfyAz/internal/model"
	"github.com/FaridHajiyevAZ/KomfyAz/internal/repository"
)

func photoForm(t *testing.T, field string, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		hdr.Set("Content-Type", "image/jpeg")
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAddPhotosOutsideReviewRejected(t *testing.T) {
	db, mock := newMockDB(t)
	h := &ProductHandler{
		Regs: repository.NewRegistrationRepo(db),
		Log:  zerolog.Nop(),
	}

	mock.ExpectQuery("SELECT (.+) FROM product_registrations").
		WillReturnRows(registrationRows(4, 9, model.RegStatusApproved))

	body, contentType := photoForm(t, "photos", "extra.jpg")
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/products/4/photos", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(9))
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, h.AddPhotos(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "under review")
	require.NoError(t, mock.ExpectationsWereMet())
}
