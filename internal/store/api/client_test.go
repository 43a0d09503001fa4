package api

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billedhq/expense-client/internal/domain/entity"
	"github.com/billedhq/expense-client/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL}, zap.NewNop())
}

func TestList(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/bills", r.URL.Path)
		json.NewEncoder(w).Encode([]entity.Bill{
			{ID: "1", Name: "Vol Paris Londres", Date: "2004-04-04", Status: entity.StatusPending},
		})
	}))

	bills, err := client.Bills().List(context.Background())
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Vol Paris Londres", bills[0].Name)
}

func TestList_ServerFailureBecomesTransportError(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := client.Bills().List(context.Background())
		require.Error(t, err)

		var transportErr *store.TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, status, transportErr.Status)
		assert.Contains(t, err.Error(), "Erreur")
	}
}

func TestCreate_SendsMultipartFileAndEmail(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "employee@company.test", r.FormValue("email"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "test.png", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("test"), content)

		json.NewEncoder(w).Encode(map[string]string{
			"fileUrl": "https://localhost:3456/images/test.jpg",
			"key":     "1234",
		})
	}))

	result, err := client.Bills().Create(context.Background(), store.CreateInput{
		FileName:    "test.png",
		ContentType: "image/png",
		Content:     []byte("test"),
		Email:       "employee@company.test",
		Headers:     map[string]string{"noContentType": "true"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://localhost:3456/images/test.jpg", result.FileURL)
	assert.Equal(t, "1234", result.Key)
}

func TestUpdate_SerializesBillAndSelector(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/bills/1234", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(entity.Bill{ID: "1234", Status: entity.StatusPending})
	}))

	bill := entity.Bill{
		ID:     "1234",
		Email:  "employee@company.test",
		Type:   "Transports",
		Name:   "Vol",
		Date:   "2022-07-31",
		Amount: 348,
		Vat:    70,
		Pct:    20,
		Status: entity.StatusPending,
	}

	updated, err := client.Bills().Update(context.Background(), store.UpdateInput{Bill: bill, Selector: "1234"})
	require.NoError(t, err)
	assert.Equal(t, "1234", updated.ID)

	assert.Equal(t, "pending", received["status"])
	assert.Equal(t, 348.0, received["amount"])
	assert.Equal(t, 20.0, received["pct"])
}

func TestUpdate_NaNAmountTravelsAsNull(t *testing.T) {
	var received map[string]interface{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(entity.Bill{ID: "1"})
	}))

	bill := entity.Bill{ID: "1", Amount: math.NaN(), Vat: math.NaN()}
	_, err := client.Bills().Update(context.Background(), store.UpdateInput{Bill: bill, Selector: "1"})
	require.NoError(t, err)

	assert.Nil(t, received["amount"])
	assert.Nil(t, received["vat"])
}

func TestUpdate_ServerFailureBecomesTransportError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Bills().Update(context.Background(), store.UpdateInput{Selector: "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Erreur 500")
}
