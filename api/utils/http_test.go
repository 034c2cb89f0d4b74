// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meterio/outcry/api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONWithStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, utils.WriteJSONWithStatus(rec, http.StatusConflict, utils.M{"class": "capacity"}))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, utils.JSONContentType, rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "capacity", body["class"])

	rec = httptest.NewRecorder()
	require.NoError(t, utils.WriteJSON(rec, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, utils.JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestWrapHandlerFunc(t *testing.T) {
	h := utils.WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		return utils.Forbidden(errors.New("account is delegated"))
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account is delegated\n", rec.Body.String())
}
