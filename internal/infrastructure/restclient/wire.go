package restclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Escandallo-api/internal/domain"
	"github.com/jhoicas/Escandallo-api/internal/domain/entity"
)

// subRecipeOffset codificación heredada: un ingredienteId mayor que este valor
// referencia la receta (id - offset). Solo se interpreta aquí, al cargar y guardar.
const subRecipeOffset = 100000

// flexDecimal número que el almacén puede enviar como número, cadena o null.
// Un valor no numérico se toma como 0.
type flexDecimal struct{ decimal.Decimal }

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Decimal = decimal.Zero
		return nil
	}
	s := strings.Trim(string(b), `"`)
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		f.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Debug().Str("valor", s).Msg("número no válido en el almacén; se toma 0")
		f.Decimal = decimal.Zero
		return nil
	}
	f.Decimal = d
	return nil
}

func (f flexDecimal) MarshalJSON() ([]byte, error) {
	return []byte(f.Decimal.String()), nil
}

func flex(d decimal.Decimal) flexDecimal { return flexDecimal{d} }

func flexPtr(d *decimal.Decimal) *flexDecimal {
	if d == nil {
		return nil
	}
	return &flexDecimal{*d}
}

// flexID identificador numérico o alfanumérico. Se reenvía como número si lo es.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	*id = flexID(strings.Trim(string(b), `"`))
	return nil
}

func (id flexID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// ── ingredientes ─────────────────────────────────────────────────────────────

type ingredientWire struct {
	ID                 flexID       `json:"id"`
	Nombre             string       `json:"nombre"`
	Unidad             string       `json:"unidad,omitempty"`
	FormatoCompra      string       `json:"formato_compra,omitempty"`
	Precio             flexDecimal  `json:"precio"`
	PrecioMedio        *flexDecimal `json:"precio_medio,omitempty"`
	CantidadPorFormato flexDecimal  `json:"cantidad_por_formato"`
	StockActual        flexDecimal  `json:"stock_actual"`
	StockMinimo        flexDecimal  `json:"stock_minimo"`
	Activo             *bool        `json:"activo,omitempty"`
}

func (w ingredientWire) toEntity() entity.Ingredient {
	ing := entity.Ingredient{
		ID:               string(w.ID),
		Name:             w.Nombre,
		Unit:             w.Unidad,
		PurchaseFormat:   w.FormatoCompra,
		PurchasePrice:    w.Precio.Decimal,
		UnitsPerFormat:   w.CantidadPorFormato.Decimal,
		StockQuantity:    w.StockActual.Decimal,
		ReorderThreshold: w.StockMinimo.Decimal,
		Active:           w.Activo == nil || *w.Activo,
	}
	if ing.UnitsPerFormat.IsZero() {
		ing.UnitsPerFormat = decimal.NewFromInt(1)
	}
	// precio_medio 0 en el almacén equivale a "aún no calculado"
	if w.PrecioMedio != nil && w.PrecioMedio.IsPositive() {
		p := w.PrecioMedio.Decimal
		ing.AveragePrice = &p
	}
	return ing
}

func ingredientToWire(i entity.Ingredient) ingredientWire {
	active := i.Active
	return ingredientWire{
		ID:                 flexID(i.ID),
		Nombre:             i.Name,
		Unidad:             i.Unit,
		FormatoCompra:      i.PurchaseFormat,
		Precio:             flex(i.PurchasePrice),
		PrecioMedio:        flexPtr(i.AveragePrice),
		CantidadPorFormato: flex(i.UnitsPerFormat),
		StockActual:        flex(i.StockQuantity),
		StockMinimo:        flex(i.ReorderThreshold),
		Activo:             &active,
	}
}

// ── recetas ──────────────────────────────────────────────────────────────────

type recipeLineWire struct {
	IngredienteID flexID      `json:"ingredienteId"`
	Cantidad      flexDecimal `json:"cantidad"`
}

type recipeWire struct {
	ID           flexID           `json:"id"`
	Nombre       string           `json:"nombre"`
	Categoria    string           `json:"categoria,omitempty"`
	Porciones    int              `json:"porciones"`
	PrecioVenta  flexDecimal      `json:"precio_venta"`
	Activo       *bool            `json:"activo,omitempty"`
	Ingredientes []recipeLineWire `json:"ingredientes"`
}

// decodeRef decodifica la referencia heredada en una referencia etiquetada.
func decodeRef(raw flexID) entity.ComponentRef {
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err == nil && n > subRecipeOffset {
		return entity.SubRecipeRef(strconv.FormatInt(n-subRecipeOffset, 10))
	}
	return entity.IngredientRef(string(raw))
}

// encodeRef inverso de decodeRef. Una sub-receta necesita ID numérico.
func encodeRef(ref entity.ComponentRef) (flexID, error) {
	if !ref.IsSubRecipe() {
		return flexID(ref.ID), nil
	}
	n, err := strconv.ParseInt(ref.ID, 10, 64)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("sub-receta %q sin ID numérico: %w", ref.ID, domain.ErrInvalidInput)
	}
	return flexID(strconv.FormatInt(n+subRecipeOffset, 10)), nil
}

func (w recipeWire) toEntity() entity.Recipe {
	r := entity.Recipe{
		ID:        string(w.ID),
		Name:      w.Nombre,
		Category:  w.Categoria,
		Portions:  w.Porciones,
		SalePrice: w.PrecioVenta.Decimal,
		Active:    w.Activo == nil || *w.Activo,
		Lines:     make([]entity.RecipeLine, 0, len(w.Ingredientes)),
	}
	for _, l := range w.Ingredientes {
		r.Lines = append(r.Lines, entity.RecipeLine{Component: decodeRef(l.IngredienteID), Quantity: l.Cantidad.Decimal})
	}
	return r
}

func recipeToWire(r entity.Recipe) (recipeWire, error) {
	active := r.Active
	w := recipeWire{
		ID:           flexID(r.ID),
		Nombre:       r.Name,
		Categoria:    r.Category,
		Porciones:    r.PortionCount(),
		PrecioVenta:  flex(r.SalePrice),
		Activo:       &active,
		Ingredientes: make([]recipeLineWire, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		id, err := encodeRef(l.Component)
		if err != nil {
			return recipeWire{}, err
		}
		w.Ingredientes = append(w.Ingredientes, recipeLineWire{IngredienteID: id, Cantidad: flex(l.Quantity)})
	}
	return w, nil
}

// ── variantes ────────────────────────────────────────────────────────────────

type variantWire struct {
	ID          flexID      `json:"id,omitempty"`
	RecetaID    flexID      `json:"receta_id,omitempty"`
	Nombre      string      `json:"nombre"`
	PrecioVenta flexDecimal `json:"precio_venta"`
	Factor      flexDecimal `json:"factor"`
	Codigo      string      `json:"codigo,omitempty"`
}

func (w variantWire) toEntity(recipeID string) entity.RecipeVariant {
	factor := w.Factor.Decimal
	if factor.IsZero() {
		factor = decimal.NewFromInt(1)
	}
	return entity.RecipeVariant{
		ID:         string(w.ID),
		RecipeID:   recipeID,
		Name:       w.Nombre,
		CostFactor: factor,
		SalePrice:  w.PrecioVenta.Decimal,
		Code:       w.Codigo,
	}
}

func variantToWire(v entity.RecipeVariant) variantWire {
	return variantWire{
		ID:          flexID(v.ID),
		RecetaID:    flexID(v.RecipeID),
		Nombre:      v.Name,
		PrecioVenta: flex(v.SalePrice),
		Factor:      flex(v.CostFactor),
		Codigo:      v.Code,
	}
}

// ── pedidos ──────────────────────────────────────────────────────────────────

type orderLineWire struct {
	IngredienteID    flexID       `json:"ingredienteId"`
	CantidadPedida   flexDecimal  `json:"cantidad_pedida"`
	PrecioPedido     flexDecimal  `json:"precio_pedido"`
	CantidadRecibida *flexDecimal `json:"cantidad_recibida,omitempty"`
	PrecioRecibido   *flexDecimal `json:"precio_recibido,omitempty"`
	EstadoLinea      string       `json:"estado_linea,omitempty"`
}

type orderWire struct {
	ID             flexID          `json:"id"`
	ProveedorID    flexID          `json:"proveedor_id,omitempty"`
	Estado         string          `json:"estado"`
	Lineas         []orderLineWire `json:"lineas"`
	Fecha          *time.Time      `json:"fecha,omitempty"`
	FechaRecepcion *time.Time      `json:"fecha_recepcion,omitempty"`
}

func orderStatusFromWire(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "recibido", "received":
		return entity.OrderStatusReceived
	default:
		return entity.OrderStatusPending
	}
}

func (w orderWire) toEntity() entity.Order {
	o := entity.Order{
		ID:         string(w.ID),
		SupplierID: string(w.ProveedorID),
		Status:     orderStatusFromWire(w.Estado),
		ReceivedAt: w.FechaRecepcion,
		Lines:      make([]entity.OrderLine, 0, len(w.Lineas)),
	}
	if w.Fecha != nil {
		o.CreatedAt = *w.Fecha
	}
	for _, l := range w.Lineas {
		line := entity.OrderLine{
			IngredientID:     string(l.IngredienteID),
			QuantityOrdered:  l.CantidadPedida.Decimal,
			UnitPriceOrdered: l.PrecioPedido.Decimal,
			LineStatus:       entity.LineStatus(l.EstadoLinea),
		}
		if l.CantidadRecibida != nil {
			line.QuantityReceived = l.CantidadRecibida.Decimal
		}
		if l.PrecioRecibido != nil {
			line.UnitPriceReceived = l.PrecioRecibido.Decimal
		}
		o.Lines = append(o.Lines, line)
	}
	return o
}

func orderToWire(o entity.Order) orderWire {
	estado := "pendiente"
	if o.IsReceived() {
		estado = "recibido"
	}
	w := orderWire{
		ID:             flexID(o.ID),
		ProveedorID:    flexID(o.SupplierID),
		Estado:         estado,
		FechaRecepcion: o.ReceivedAt,
		Lineas:         make([]orderLineWire, 0, len(o.Lines)),
	}
	if !o.CreatedAt.IsZero() {
		t := o.CreatedAt
		w.Fecha = &t
	}
	for _, l := range o.Lines {
		qty, price := l.QuantityReceived, l.UnitPriceReceived
		w.Lineas = append(w.Lineas, orderLineWire{
			IngredienteID:    flexID(l.IngredientID),
			CantidadPedida:   flex(l.QuantityOrdered),
			PrecioPedido:     flex(l.UnitPriceOrdered),
			CantidadRecibida: flexPtr(&qty),
			PrecioRecibido:   flexPtr(&price),
			EstadoLinea:      string(l.LineStatus),
		})
	}
	return w
}

// ── mermas ───────────────────────────────────────────────────────────────────

type wasteWire struct {
	IngredienteID flexID      `json:"ingredienteId"`
	Cantidad      flexDecimal `json:"cantidad"`
	Motivo        string      `json:"motivo"`
	ValorPerdida  flexDecimal `json:"valorPerdida"`
	Nota          string      `json:"nota,omitempty"`
	Usuario       string      `json:"usuario,omitempty"`
	Fecha         time.Time   `json:"fecha"`
}

func wasteToWire(r entity.WasteRecord) wasteWire {
	return wasteWire{
		IngredienteID: flexID(r.IngredientID),
		Cantidad:      flex(r.Quantity),
		Motivo:        string(r.Reason),
		ValorPerdida:  flex(r.LossValue),
		Nota:          r.Note,
		Usuario:       r.RecordedBy,
		Fecha:         r.RecordedAt,
	}
}
