package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/engage-backend/internal/ledger"
	"github.com/engagehq/engage-backend/internal/store"
	"github.com/engagehq/engage-backend/pkg/db/models"
	pkgerrors "github.com/engagehq/engage-backend/pkg/errors"
)

type fakeStoreService struct {
	listFn     func(ctx context.Context) ([]models.StoreItem, error)
	purchaseFn func(ctx context.Context, input store.PurchaseInput) (*store.PurchaseResult, error)
}

func (f *fakeStoreService) ListItems(ctx context.Context) ([]models.StoreItem, error) {
	return f.listFn(ctx)
}

func (f *fakeStoreService) Purchase(ctx context.Context, input store.PurchaseInput) (*store.PurchaseResult, error) {
	return f.purchaseFn(ctx, input)
}

func (f *fakeStoreService) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	panic("not expected")
}

func TestStoreItemsReturnsCatalog(t *testing.T) {
	svc := &fakeStoreService{
		listFn: func(ctx context.Context) ([]models.StoreItem, error) {
			return []models.StoreItem{{Name: "Coffee Voucher"}, {Name: "Team Lunch"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/store/items", nil).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	StoreItems(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Data struct {
			Items []struct {
				Name string `json:"name"`
			} `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(payload.Data.Items) != 2 {
		t.Fatalf("expected 2 items got %d", len(payload.Data.Items))
	}
}

func TestStorePurchaseForwardsInput(t *testing.T) {
	userID := uuid.New()
	itemID := uuid.New()
	svc := &fakeStoreService{
		purchaseFn: func(ctx context.Context, input store.PurchaseInput) (*store.PurchaseResult, error) {
			if input.Identity.UserID != userID {
				t.Fatalf("expected purchase for %s got %s", userID, input.Identity.UserID)
			}
			if input.ItemID != itemID {
				t.Fatalf("expected item %s got %s", itemID, input.ItemID)
			}
			if input.Quantity != 3 {
				t.Fatalf("expected quantity 3 got %d", input.Quantity)
			}
			return &store.PurchaseResult{TransactionID: uuid.New(), Quantity: 3, PointsSpent: 150}, nil
		},
	}

	body := strings.NewReader(`{"item_id":"` + itemID.String() + `","quantity":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/store/purchase", body).WithContext(callerContext(userID))
	resp := httptest.NewRecorder()
	StorePurchase(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStorePurchaseRejectsMalformedItemID(t *testing.T) {
	svc := &fakeStoreService{
		purchaseFn: func(ctx context.Context, input store.PurchaseInput) (*store.PurchaseResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	body := strings.NewReader(`{"item_id":"not-a-uuid"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/store/purchase", body).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	StorePurchase(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestStorePurchaseSurfacesRejectionCode(t *testing.T) {
	svc := &fakeStoreService{
		purchaseFn: func(ctx context.Context, input store.PurchaseInput) (*store.PurchaseResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientPoints, "not enough points").
				WithDetails(ledger.ShortfallDetails{Required: 200, Available: 50})
		},
	}

	body := strings.NewReader(`{"item_id":"` + uuid.NewString() + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/store/purchase", body).WithContext(callerContext(uuid.New()))
	resp := httptest.NewRecorder()
	StorePurchase(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeInsufficientPoints) {
		t.Fatalf("expected INSUFFICIENT_POINTS got %s", payload.Error.Code)
	}
	if payload.Error.Message != "not enough points" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}
