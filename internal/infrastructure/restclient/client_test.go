package restclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
	"github.com/jhoicas/Escandallo-api/internal/infrastructure/restclient"
	"github.com/jhoicas/Escandallo-api/pkg/jwt"
	"github.com/jhoicas/Escandallo-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type captured struct {
	mu     sync.Mutex
	method string
	path   string
	auth   string
	body   []byte
}

func newServer(t *testing.T, status int, response string) (*restclient.Client, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.method, c.path, c.auth, c.body = r.Method, r.URL.Path, r.Header.Get("Authorization"), body
		c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return restclient.New(srv.URL+"/", time.Second, logger.Nop()), c
}

func TestIngredients_ListDecodificaNumerosFlexibles(t *testing.T) {
	client, got := newServer(t, http.StatusOK, `[
		{"id": 3, "nombre": "Tomate", "precio": "12,50", "cantidad_por_formato": 5, "stock_actual": "7.5", "stock_minimo": null, "precio_medio": 0},
		{"id": "4", "nombre": "Aceite", "precio": 9, "cantidad_por_formato": 0, "stock_actual": 2, "precio_medio": "2.1", "activo": false},
		{"id": 5, "nombre": "Sal", "precio": "n/a", "cantidad_por_formato": "1", "stock_actual": true, "stock_minimo": "?"}
	]`)
	ctx := jwt.WithToken(context.Background(), "tok-123")

	ings, err := client.Ingredients().List(ctx)
	require.NoError(t, err)
	require.Len(t, ings, 3)

	assert.Equal(t, "3", ings[0].ID)
	assert.True(t, ings[0].PurchasePrice.Equal(d("12.5")))
	assert.True(t, ings[0].UnitPrice().Equal(d("2.5")))
	assert.Nil(t, ings[0].AveragePrice, "precio_medio 0 significa sin calcular")
	assert.True(t, ings[0].StockQuantity.Equal(d("7.5")))
	assert.True(t, ings[0].Active)

	assert.True(t, ings[1].UnitsPerFormat.Equal(d("1")))
	require.NotNil(t, ings[1].AveragePrice)
	assert.True(t, ings[1].UnitPrice().Equal(d("2.1")))
	assert.False(t, ings[1].Active)

	assert.True(t, ings[2].PurchasePrice.IsZero(), "precio no numérico se toma como 0")
	assert.True(t, ings[2].StockQuantity.IsZero())
	assert.True(t, ings[2].ReorderThreshold.IsZero())

	assert.Equal(t, "/ingredients", got.path)
	assert.Equal(t, "Bearer tok-123", got.auth)
}

func TestRecipes_ListAceptaSobreYDecodificaSubRecetas(t *testing.T) {
	client, _ := newServer(t, http.StatusOK, `{"data": [
		{"id": 9, "nombre": "Macarrones", "porciones": 2, "precio_venta": "6",
		 "ingredientes": [{"ingredienteId": 12, "cantidad": 0.2}, {"ingredienteId": 100007, "cantidad": "5"}]}
	]}`)
	recipes, err := client.Recipes().List(context.Background())
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	lines := recipes[0].Lines
	require.Len(t, lines, 2)
	assert.Equal(t, entity.IngredientRef("12"), lines[0].Component)
	assert.Equal(t, entity.SubRecipeRef("7"), lines[1].Component)
	assert.True(t, lines[1].Quantity.Equal(d("5")))
}

func TestRecipes_UpdateCodificaDesplazamiento(t *testing.T) {
	client, got := newServer(t, http.StatusOK, ``)
	err := client.Recipes().Update(context.Background(), &entity.Recipe{
		ID: "9", Name: "Macarrones", Portions: 2, SalePrice: d("6"),
		Lines: []entity.RecipeLine{
			{Component: entity.IngredientRef("12"), Quantity: d("0.2")},
			{Component: entity.SubRecipeRef("7"), Quantity: d("5")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, "/recipes/9", got.path)

	var body struct {
		Porciones    int `json:"porciones"`
		Ingredientes []struct {
			IngredienteID json.Number `json:"ingredienteId"`
			Cantidad      json.Number `json:"cantidad"`
		} `json:"ingredientes"`
	}
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, 2, body.Porciones)
	require.Len(t, body.Ingredientes, 2)
	assert.Equal(t, "12", body.Ingredientes[0].IngredienteID.String())
	assert.Equal(t, "100007", body.Ingredientes[1].IngredienteID.String())
}

func TestRecipes_SubRecetaSinIDNumericoNoLlamaAlServidor(t *testing.T) {
	client, got := newServer(t, http.StatusOK, ``)
	err := client.Recipes().Update(context.Background(), &entity.Recipe{
		ID: "9", Portions: 1,
		Lines: []entity.RecipeLine{{Component: entity.SubRecipeRef("salsa"), Quantity: d("1")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, got.method)
}

func TestStatusMapping(t *testing.T) {
	cases := map[int]error{
		http.StatusNotFound:            domain.ErrNotFound,
		http.StatusConflict:            domain.ErrConflict,
		http.StatusUnauthorized:        domain.ErrUnauthorized,
		http.StatusUnprocessableEntity: domain.ErrRejected,
		http.StatusInternalServerError: domain.ErrRejected,
		http.StatusServiceUnavailable:  domain.ErrTransient,
	}
	for status, want := range cases {
		client, _ := newServer(t, status, `{"error":"x"}`)
		_, err := client.Ingredients().GetByID(context.Background(), "1")
		assert.ErrorIs(t, err, want, "HTTP %d", status)
	}
}

func TestServidorCaidoEsTransitorio(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	client := restclient.New(url, time.Second, logger.Nop())
	_, err := client.Ingredients().List(context.Background())
	assert.ErrorIs(t, err, domain.ErrTransient)
	assert.True(t, domain.IsRetryable(err))
}

func TestWaste_SubmitBatchUnaLlamada(t *testing.T) {
	client, got := newServer(t, http.StatusCreated, `{"ok":true}`)
	err := client.WasteLog().SubmitBatch(context.Background(), []entity.WasteRecord{
		{IngredientID: "3", Quantity: d("2"), Reason: entity.ReasonExpired, LossValue: d("3.00")},
		{IngredientID: "4", Quantity: d("1"), Reason: entity.ReasonBroken, LossValue: d("0.5")},
	})
	require.NoError(t, err)
	assert.Equal(t, "/mermas/batch", got.path)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(got.body, &body))
	require.Len(t, body, 2)
	assert.EqualValues(t, 3, body[0]["ingredienteId"])
	assert.Equal(t, "caducado", body[0]["motivo"])
	assert.EqualValues(t, 3, body[0]["valorPerdida"])
}

func TestOrders_GetYUpdate(t *testing.T) {
	client, got := newServer(t, http.StatusOK, `{"id": 5, "proveedor_id": 2, "estado": "pendiente",
		"lineas": [{"ingredienteId": 3, "cantidad_pedida": 10, "precio_pedido": "2"}]}`)
	o, err := client.Orders().GetByID(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPending, o.Status)
	require.Len(t, o.Lines, 1)
	assert.True(t, o.Lines[0].QuantityOrdered.Equal(d("10")))

	now := time.Now()
	o.Status = entity.OrderStatusReceived
	o.ReceivedAt = &now
	o.Lines[0].QuantityReceived = d("8")
	o.Lines[0].LineStatus = entity.LineVarianceDetected
	require.NoError(t, client.Orders().Update(context.Background(), o))

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.body, &body))
	assert.Equal(t, "recibido", body["estado"])
	lineas := body["lineas"].([]any)
	assert.EqualValues(t, 8, lineas[0].(map[string]any)["cantidad_recibida"])
	assert.Equal(t, "variance_detected", lineas[0].(map[string]any)["estado_linea"])
}
