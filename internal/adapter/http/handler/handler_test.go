package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"starmf-gateway/internal/adapter/http/dto"
	"starmf-gateway/internal/core/domain"
	"starmf-gateway/internal/core/ports/mocks"
	"starmf-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, target string, payload interface{}) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data envelope: %s", w.Body.String())
	return data
}

// --- Auth Handler Tests ---

func TestRegister_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	userID := uuid.New()
	mockAuth.EXPECT().Register(gomock.Any(), "testuser", "password123").Return(&domain.User{
		ID:       userID,
		Username: "testuser",
		Status:   domain.UserStatusActive,
	}, nil)

	w, c := postJSON(t, "/api/v1/auth/register", dto.RegisterRequest{
		Username: "testuser",
		Password: "password123",
	})
	h.Register(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, userID.String(), data["user_id"])
	assert.Equal(t, "testuser", data["username"])
}

func TestRegister_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	// Empty body => binding error
	w, c := postJSON(t, "/api/v1/auth/register", map[string]string{})
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_ServiceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Register(gomock.Any(), "taken", gomock.Any()).Return(nil, apperror.ErrUsernameExists())

	w, c := postJSON(t, "/", dto.RegisterRequest{
		Username: "taken",
		Password: "password123",
	})
	h.Register(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLogin_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	expiry := time.Now().Add(24 * time.Hour)
	mockAuth.EXPECT().Login(gomock.Any(), "testuser", "password123").Return("jwt-token-123", expiry, nil)

	w, c := postJSON(t, "/", dto.LoginRequest{
		Username: "testuser",
		Password: "password123",
	})
	h.Login(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "jwt-token-123", data["token"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().Login(gomock.Any(), "bad", "bad-password").Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w, c := postJSON(t, "/", dto.LoginRequest{
		Username: "bad",
		Password: "bad-password",
	})
	h.Login(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestExchangeSession_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	obtained := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	mockAuth.EXPECT().AuthenticateExchange(gomock.Any(), "PassKey456").Return(&domain.Credential{
		EncryptedSecret: "enc",
		ObtainedAt:      obtained,
		ValidUntil:      obtained.Add(time.Hour),
	}, nil)

	w, c := postJSON(t, "/", dto.ExchangeSessionRequest{Passkey: "PassKey456"})
	h.ExchangeSession(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "2026-08-31T09:00:00Z", data["obtained_at"])
	assert.Equal(t, "2026-08-31T10:00:00Z", data["valid_until"])
	// The credential secret never leaves the server.
	assert.NotContains(t, w.Body.String(), "enc")
}

func TestExchangeSession_NonAlphanumericPasskey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	w, c := postJSON(t, "/", map[string]string{"passkey": "bad key!"})
	h.ExchangeSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExchangeSession_AuthRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAuth := mocks.NewMockAuthService(ctrl)
	h := NewAuthHandler(mockAuth)

	mockAuth.EXPECT().
		AuthenticateExchange(gomock.Any(), "WrongKey").
		Return(nil, apperror.ErrExchangeAuth(assert.AnError))

	w, c := postJSON(t, "/", dto.ExchangeSessionRequest{Passkey: "WrongKey"})
	h.ExchangeSession(c)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

// --- Order Handler Tests ---

func validOrderBody() dto.OrderRequest {
	return dto.OrderRequest{
		RefNo:           "REF1001",
		TransactionType: "PURCHASE",
		ClientCode:      "CLI001",
		SchemeCode:      "SCH001",
		Amount:          "5000",
		KYCConfirmed:    true,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	orderID := uuid.New()
	mockOrders.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).Return(&domain.Order{
		ID:              orderID,
		RefNo:           "REF1001",
		ClientCode:      "CLI001",
		SchemeCode:      "SCH001",
		TransactionType: domain.TransactionPurchase,
		Plan:            domain.PlanLumpsum,
		Amount:          "5000",
		Status:          domain.OrderStatusAccepted,
		ExchangeOrderID: "9876543210",
		CreatedAt:       time.Now(),
	}, nil)

	w, c := postJSON(t, "/api/v1/orders", validOrderBody())
	h.PlaceOrder(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, orderID.String(), data["id"])
	assert.Equal(t, "ACCEPTED", data["status"])
	assert.Equal(t, "9876543210", data["exchange_order_id"])
}

func TestPlaceOrder_BadRefNo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	body := validOrderBody()
	body.RefNo = "REF 1001" // space fails alphanum binding

	w, c := postJSON(t, "/api/v1/orders", body)
	h.PlaceOrder(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrder_DuplicateReference(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrDuplicateReference())

	w, c := postJSON(t, "/api/v1/orders", validOrderBody())
	h.PlaceOrder(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestPlaceOrder_ExchangeRejection(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().
		PlaceOrder(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrExchangeRejected("cut-off time elapsed", assert.AnError))

	w, c := postJSON(t, "/api/v1/orders", validOrderBody())
	h.PlaceOrder(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BSE_004", resp["error_code"])
	assert.Equal(t, "cut-off time elapsed", resp["message"])
}

func TestPlaceSIPOrder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().PlaceOrder(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ interface{}, req domain.OrderRequest) (*domain.Order, error) {
			assert.Equal(t, domain.PlanSIP, req.Plan)
			assert.Equal(t, domain.FrequencyMonthly, req.Frequency)
			assert.Equal(t, 12, req.Installments)
			return &domain.Order{
				ID:        uuid.New(),
				RefNo:     req.RefNo,
				Plan:      req.Plan,
				Status:    domain.OrderStatusAccepted,
				CreatedAt: time.Now(),
			}, nil
		})

	w, c := postJSON(t, "/api/v1/orders/sip", dto.SIPOrderRequest{
		RefNo:        "SIP1001",
		ClientCode:   "CLI001",
		SchemeCode:   "SCH001",
		Amount:       "2000",
		StartDate:    "05/09/2026",
		Frequency:    "MONTHLY",
		Installments: 12,
		MandateID:    "MAND001",
		KYCConfirmed: true,
	})
	h.PlaceSIPOrder(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPlaceSIPOrder_BadStartDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	w, c := postJSON(t, "/api/v1/orders/sip", dto.SIPOrderRequest{
		RefNo:        "SIP1001",
		ClientCode:   "CLI001",
		SchemeCode:   "SCH001",
		Amount:       "2000",
		StartDate:    "2026-09-05", // ISO format is not the wire format
		Frequency:    "MONTHLY",
		Installments: 12,
		MandateID:    "MAND001",
	})
	h.PlaceSIPOrder(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCancelOrder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().CancelOrder(gomock.Any(), "REF1001").Return(&domain.Order{
		ID:        uuid.New(),
		RefNo:     "REF1001",
		Status:    domain.OrderStatusCancelled,
		CreatedAt: time.Now(),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders/REF1001/cancel", nil)
	c.Params = gin.Params{{Key: "ref_no", Value: "REF1001"}}

	h.CancelOrder(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "CANCELLED", data["status"])
}

func TestCancelOrder_NotCancellable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().CancelOrder(gomock.Any(), "REF1001").Return(nil, apperror.ErrNotCancellable())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/orders/REF1001/cancel", nil)
	c.Params = gin.Params{{Key: "ref_no", Value: "REF1001"}}

	h.CancelOrder(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().GetOrder(gomock.Any(), "MISSING").Return(nil, apperror.ErrNotFound("order"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders/MISSING", nil)
	c.Params = gin.Params{{Key: "ref_no", Value: "MISSING"}}

	h.GetOrder(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrders_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOrders := mocks.NewMockOrderService(ctrl)
	h := NewOrderHandler(mockOrders)

	mockOrders.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return([]domain.Order{
		{ID: uuid.New(), RefNo: "REF1001", Status: domain.OrderStatusAccepted, CreatedAt: time.Now()},
		{ID: uuid.New(), RefNo: "REF1002", Status: domain.OrderStatusPending, CreatedAt: time.Now()},
	}, int64(2), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders?page=1&page_size=20", nil)

	h.ListOrders(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := dataOf(t, w)
	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	assert.Equal(t, float64(2), data["total"])
	assert.Equal(t, float64(1), data["total_pages"])
}

// --- Client Handler Tests ---

func validClientBody() dto.ClientRegistrationRequest {
	return dto.ClientRegistrationRequest{
		ClientCode:      "CLI001",
		FirstName:       "Asha",
		LastName:        "Rao",
		TaxStatus:       "01",
		DOB:             "15/06/1990",
		Occupation:      "01",
		HoldingNature:   "SI",
		DividendPayMode: "01",
		PAN:             "ABCDE1234F",
		ClientType:      "P",
		BankAccounts: []dto.BankAccount{
			{AccountType: "SB", AccountNo: "1234567890", IFSCCode: "HDFC0001234", Default: true},
		},
		Address1:          "12 MG Road",
		City:              "Mumbai",
		State:             "MA",
		Pincode:           "400001",
		Country:           "India",
		Email:             "asha@example.com",
		Mobile:            "9876543210",
		CommunicationMode: "E",
	}
}

func TestRegisterClient_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClients := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(mockClients)

	clientID := uuid.New()
	mockClients.EXPECT().RegisterClient(gomock.Any(), gomock.Any(), domain.RegistrationOptions{
		Type: domain.RegistrationNew,
	}).Return(&domain.Client{
		ID:         clientID,
		ClientCode: "CLI001",
		FirstName:  "Asha",
		Status:     domain.ClientStatusRegistered,
		CreatedAt:  time.Now(),
	}, nil)

	w, c := postJSON(t, "/api/v1/clients", validClientBody())
	h.RegisterClient(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataOf(t, w)
	assert.Equal(t, "CLI001", data["client_code"])
	assert.Equal(t, "REGISTERED", data["status"])
}

func TestRegisterClient_BadPAN(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClients := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(mockClients)

	body := validClientBody()
	body.PAN = "12345ABCDE"

	w, c := postJSON(t, "/api/v1/clients", body)
	h.RegisterClient(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModifyClient_PathMismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClients := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(mockClients)

	w, c := postJSON(t, "/api/v1/clients/OTHER", validClientBody())
	c.Params = gin.Params{{Key: "code", Value: "OTHER"}}

	h.ModifyClient(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestModifyClient_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClients := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(mockClients)

	body := validClientBody()
	body.RequiredFields = []string{"ClientCode", "Email"}

	mockClients.EXPECT().RegisterClient(gomock.Any(), gomock.Any(), domain.RegistrationOptions{
		Type:           domain.RegistrationModify,
		RequiredFields: []string{"ClientCode", "Email"},
	}).Return(&domain.Client{
		ID:         uuid.New(),
		ClientCode: "CLI001",
		Status:     domain.ClientStatusRegistered,
		CreatedAt:  time.Now(),
	}, nil)

	w, c := postJSON(t, "/api/v1/clients/CLI001", body)
	c.Params = gin.Params{{Key: "code", Value: "CLI001"}}

	h.ModifyClient(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetClient_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClients := mocks.NewMockClientService(ctrl)
	h := NewClientHandler(mockClients)

	mockClients.EXPECT().GetClient(gomock.Any(), "MISSING").Return(nil, apperror.ErrNotFound("client"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/clients/MISSING", nil)
	c.Params = gin.Params{{Key: "code", Value: "MISSING"}}

	h.GetClient(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Health Check Test ---

func TestHealthCheck(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck()(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}
