package orderControllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Pixel0001/Nutopia-sub001/apperr"
	"github.com/Pixel0001/Nutopia-sub001/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{}, &models.Category{}, &models.Product{},
		&models.CartLine{}, &models.Order{}, &models.OrderItem{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCart(t *testing.T, db *gorm.DB, userID string, price string, qty, stock int) models.Product {
	t.Helper()
	p := models.Product{
		Name:  "Red Apple",
		Slug:  "red-apple",
		Price: decimal.RequireFromString(price),
		Unit:  "kg",
		Stock: stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	line := models.CartLine{
		UserID:    userID,
		ProductID: &p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Unit:      p.Unit,
		Quantity:  qty,
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
	return p
}

var contact = ContactInfo{
	Name:    "Ana Popescu",
	Email:   "ana@example.com",
	Phone:   "+37360000000",
	Address: "str. Florilor 12",
	City:    "Chisinau",
}

func TestCreateFromCart_SnapshotTotalsAndClear(t *testing.T) {
	db := openTestDB(t)
	p := seedCart(t, db, "u1", "50.00", 4, 5)

	order, err := CreateFromCart(db, "u1", contact, "cash", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := order.Subtotal.StringFixed(2); got != "200.00" {
		t.Fatalf("subtotal = %s, want 200.00", got)
	}
	if got := order.ShippingCost.StringFixed(2); got != "100.00" {
		t.Fatalf("shipping = %s, want 100.00", got)
	}
	if got := order.Total.StringFixed(2); got != "300.00" {
		t.Fatalf("total = %s, want 300.00", got)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("status = %s, want pending", order.Status)
	}
	if order.OrderRef == "" {
		t.Fatalf("order ref is empty")
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 4 {
		t.Fatalf("items = %+v, want one item of quantity 4", order.Items)
	}

	var reloaded models.Product
	if err := db.First(&reloaded, p.ID).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	if reloaded.Stock != 1 {
		t.Fatalf("stock = %d after checkout, want 1", reloaded.Stock)
	}

	var count int64
	db.Model(&models.CartLine{}).Where("user_id = ?", "u1").Count(&count)
	if count != 0 {
		t.Fatalf("cart has %d lines after checkout, want 0", count)
	}
}

func TestCreateFromCart_AtomicOnStockFailure(t *testing.T) {
	db := openTestDB(t)
	ok := seedCart(t, db, "u1", "50.00", 2, 10)

	short := models.Product{Name: "Green Pear", Slug: "green-pear", Price: decimal.RequireFromString("30.00"), Unit: "kg", Stock: 1}
	if err := db.Create(&short).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	line := models.CartLine{UserID: "u1", ProductID: &short.ID, Name: short.Name, Price: short.Price, Unit: short.Unit, Quantity: 3}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}

	_, err := CreateFromCart(db, "u1", contact, "cash", "")
	var se *apperr.InsufficientStockError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want InsufficientStockError", err)
	}

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	if orders != 0 {
		t.Fatalf("found %d orders after failed checkout, want 0", orders)
	}

	var lines int64
	db.Model(&models.CartLine{}).Where("user_id = ?", "u1").Count(&lines)
	if lines != 2 {
		t.Fatalf("cart has %d lines, want both kept", lines)
	}

	var reloaded models.Product
	db.First(&reloaded, ok.ID)
	if reloaded.Stock != 10 {
		t.Fatalf("stock = %d, want decrement rolled back to 10", reloaded.Stock)
	}
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	db := openTestDB(t)

	_, err := CreateFromCart(db, "u1", contact, "cash", "")
	if !errors.Is(err, apperr.ErrEmptyCart) {
		t.Fatalf("err = %v, want empty cart", err)
	}
}

func TestCreateFromCart_IdempotentByPaymentRef(t *testing.T) {
	db := openTestDB(t)
	seedCart(t, db, "u1", "50.00", 2, 10)

	first, err := CreateFromCart(db, "u1", contact, "card", "PAY-REF-0001")
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}

	// Replay after the cart was already cleared must return the same order,
	// not fail on the empty cart or create a duplicate.
	second, err := CreateFromCart(db, "u1", contact, "card", "PAY-REF-0001")
	if err != nil {
		t.Fatalf("replayed capture: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay created order %d, want %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&models.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("found %d orders, want 1", count)
	}
}

func TestOrderSnapshotSurvivesCatalogEdits(t *testing.T) {
	db := openTestDB(t)
	p := seedCart(t, db, "u1", "50.00", 2, 10)

	order, err := CreateFromCart(db, "u1", contact, "cash", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := db.Model(&p).Updates(map[string]interface{}{"name": "Renamed", "price": "99.99"}).Error; err != nil {
		t.Fatalf("mutate product: %v", err)
	}
	if err := db.Delete(&p).Error; err != nil {
		t.Fatalf("retire product: %v", err)
	}

	var reloaded models.Order
	if err := db.Preload("Items").First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	item := reloaded.Items[0]
	if item.Name != "Red Apple" || item.Price.StringFixed(2) != "50.00" {
		t.Fatalf("snapshot changed with the catalog: %+v", item)
	}
	if reloaded.Total.StringFixed(2) != order.Total.StringFixed(2) {
		t.Fatalf("total drifted: %s -> %s", order.Total, reloaded.Total)
	}
}

func TestParseOrderStatus(t *testing.T) {
	if _, err := models.ParseOrderStatus("SHIPPED"); err != nil {
		t.Fatalf("case-insensitive parse failed: %v", err)
	}
	if _, err := models.ParseOrderStatus("refunded"); err == nil {
		t.Fatalf("unknown status accepted")
	}
}

func TestGetOrderByIDHandler_ByIDAndByRef(t *testing.T) {
	db := openTestDB(t)
	seedCart(t, db, "u1", "50.00", 2, 10)
	order, err := CreateFromCart(db, "u1", contact, "cash", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	r := gin.New()
	r.GET("/orders/:orderID", GetOrderByIDHandler(db))

	get := func(param string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/"+param, nil))
		return w
	}

	if w := get(fmt.Sprintf("%d", order.ID)); w.Code != http.StatusOK {
		t.Fatalf("lookup by id: code = %d, body = %s", w.Code, w.Body.String())
	}

	// The reference customers see is non-numeric; it must hit the order_ref
	// column with a string binding, never the bigint id column.
	w := get(order.OrderRef)
	if w.Code != http.StatusOK {
		t.Fatalf("lookup by ref: code = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != order.ID {
		t.Fatalf("lookup by ref returned order %d, want %d", resp.ID, order.ID)
	}

	if w := get("20990101000000-not-a-real-ref"); w.Code != http.StatusNotFound {
		t.Fatalf("unknown ref: code = %d, want 404", w.Code)
	}
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	db := openTestDB(t)
	seedCart(t, db, "u1", "50.00", 2, 10)
	order, err := CreateFromCart(db, "u1", contact, "cash", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	r := gin.New()
	r.PUT("/orders/:orderID/status", UpdateOrderStatusHandler(db))

	do := func(status string) *httptest.ResponseRecorder {
		body, _ := json.Marshal(gin.H{"status": status})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut,
			fmt.Sprintf("/orders/%d/status", order.ID), bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	if w := do("teleported"); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status: code = %d, want 400", w.Code)
	}

	// A malformed id reads as not found, not as a database error.
	{
		body, _ := json.Marshal(gin.H{"status": "shipped"})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/orders/not-a-number/status", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("malformed id: code = %d, want 404", w.Code)
		}
	}

	w := do("shipped")
	if w.Code != http.StatusOK {
		t.Fatalf("valid status: code = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.Order
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != models.OrderStatusShipped {
		t.Fatalf("response status = %s, want shipped", resp.Status)
	}
	if resp.CustomerName != contact.Name || resp.CustomerPhone != contact.Phone {
		t.Fatalf("staff response is missing contact fields: %+v", resp)
	}

	var reloaded models.Order
	db.First(&reloaded, order.ID)
	if reloaded.Status != models.OrderStatusShipped {
		t.Fatalf("persisted status = %s, want shipped", reloaded.Status)
	}
}

func TestDeleteOrderHandler(t *testing.T) {
	db := openTestDB(t)
	seedCart(t, db, "u1", "50.00", 2, 10)
	order, err := CreateFromCart(db, "u1", contact, "cash", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	r := gin.New()
	r.DELETE("/orders/:orderID", DeleteOrderHandler(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: code = %d", w.Code)
	}

	var items int64
	db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items)
	if items != 0 {
		t.Fatalf("%d order items left behind", items)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/orders/%d", order.ID), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: code = %d, want 404", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/orders/not-a-number", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("malformed id: code = %d, want 404", w.Code)
	}
}

func TestExportOrdersToExcel(t *testing.T) {
	db := openTestDB(t)
	seedCart(t, db, "u1", "50.00", 2, 10)
	if _, err := CreateFromCart(db, "u1", contact, "cash", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	r := gin.New()
	r.GET("/orders/export", ExportOrdersToExcel(db))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("code = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=orders.xlsx" {
		t.Fatalf("content disposition = %q", got)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("empty workbook")
	}
}
