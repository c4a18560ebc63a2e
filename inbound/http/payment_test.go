package http

import (
	"encoding/json"
	"event-ticket/common"
	"event-ticket/common/constant"
	jetsteamMock "event-ticket/common/jetstream/mocks"
	"event-ticket/model"
	"event-ticket/outbound/gateway"
	gatewayMock "event-ticket/outbound/gateway/mocks"
	"event-ticket/outbound/sqlgen"
	"fmt"
	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redismock/v9"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const testGatewaySecret = "gateway-secret"

type PaymentHttpTestSuite struct {
	suite.Suite

	Cfg *viper.Viper

	Querier *sqlgen.Queries
	PgxMock pgxmock.PgxPoolIface

	Cache     *redis.Client
	CacheMock redismock.ClientMock

	Validate  *validator.Validate
	Publisher *jetsteamMock.MockPublisher
	Gateway   *gatewayMock.MockGateway
}

func (s *PaymentHttpTestSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())

	rdb, mock := redismock.NewClientMock()
	s.Cache = rdb
	s.CacheMock = mock

	pool, err := pgxmock.NewPool()
	if err != nil {
		s.T().Fatalf("failed to create pgxmock pool: %v", err)
	}

	s.PgxMock = pool
	s.Querier = sqlgen.New(pool)

	s.Validate = validator.New()
	s.Publisher = jetsteamMock.NewMockPublisher(ctrl)
	s.Gateway = gatewayMock.NewMockGateway(ctrl)

	s.Cfg = viper.New()
	s.Cfg.Set("gateway.key_secret", testGatewaySecret)
	s.Cfg.Set("payment.order_ttl", "15m")
	s.Cfg.Set("payment.bulk_expire_size", 100)
	s.Cfg.Set("registration.qr_size", 256)

	slog.SetLogLoggerLevel(slog.LevelDebug)
}

func (s *PaymentHttpTestSuite) TearDownTest() {
	s.PgxMock.Close()

	if err := s.Cache.Close(); err != nil {
		s.T().Fatalf("failed to close redis mock: %v", err)
	}
}

func TestPaymentHttpTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentHttpTestSuite))
}

func (s *PaymentHttpTestSuite) newHandler() *PaymentHttp {
	in := RegisterPaymentHttp(http.NewServeMux(), s.Cfg, Authenticator{}, s.PgxMock, s.Querier, s.Cache, s.Publisher, s.Gateway, s.Validate, common.NewAmountPrinter())
	in.TimeNow = func() time.Time { return fixedNow }
	in.QREncoder = stubQR
	return in
}

type orderFixture struct {
	id             string
	registrantId   string
	status         string
	paymentId      string
	signature      string
	registrationId string
	expiredAt      time.Time
}

func paymentOrderRows(f orderFixture) *pgxmock.Rows {
	registrantId := f.registrantId
	if registrantId == "" {
		registrantId = "user-1"
	}

	text := func(v string) pgtype.Text {
		if v == "" {
			return pgtype.Text{}
		}
		return pgtype.Text{String: v, Valid: true}
	}

	return pgxmock.NewRows(paymentOrderColumns).AddRow(
		f.id, int64(7), registrantId, nil, "NIT", "CSE", "3", int64(50000), "INR",
		f.status, text(f.paymentId), text(f.signature), text(f.registrationId),
		ts(f.expiredAt), ts(fixedNow.Add(-5*time.Minute)), ts(fixedNow.Add(-5*time.Minute)),
	)
}

func (s *PaymentHttpTestSuite) TestCreateOrder() {
	capacityKey := fmt.Sprintf(constant.EachEventCapacityKey, int64(7))
	paidEvent := eventFixture{id: 7, requiresPayment: true, amount: 50000, limit: int32Ptr(50)}

	expectPrelude := func(f eventFixture) {
		s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).WillReturnRows(eventRows(f))
		s.PgxMock.ExpectQuery(sqlName("FindRegistrantById")).WithArgs("user-1").WillReturnRows(registrantRows("NIT"))
		s.PgxMock.ExpectQuery(sqlName("ExistsRegistrationByEventAndRegistrant")).
			WithArgs(int64(7), "user-1").
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	}
	gatewayRequest := gateway.CreateOrderRequest{
		Amount:   50000,
		Currency: "INR",
		Receipt:  "7-user-1",
		Notes:    map[string]string{"event_id": "7", "registrant_id": "user-1"},
	}
	expectInsertOrder := func() *pgxmock.ExpectedExec {
		return s.PgxMock.ExpectExec(sqlName("InsertPaymentOrder")).WithArgs(
			"order_1", int64(7), "user-1", pgxmock.AnyArg(), "NIT", "CSE", "3",
			int64(50000), "INR", ts(fixedNow.Add(15*time.Minute)),
		)
	}

	tests := []struct {
		name           string
		reqBody        string
		setupMock      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "invalid json",
			reqBody:        `{`,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid request"}`,
		},
		{
			name:    "free event is registered directly",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).WillReturnRows(eventRows(eventFixture{id: 7}))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"event does not require payment"}`,
		},
		{
			name:    "already registered",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).WillReturnRows(eventRows(paidEvent))
				s.PgxMock.ExpectQuery(sqlName("FindRegistrantById")).WithArgs("user-1").WillReturnRows(registrantRows("NIT"))
				s.PgxMock.ExpectQuery(sqlName("ExistsRegistrationByEventAndRegistrant")).
					WithArgs(int64(7), "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Already registered"}`,
		},
		{
			name:    "sold out",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(-1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(0)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Registration limit reached"}`,
		},
		{
			name:    "missing counter is seeded from storage",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(0)
				s.PgxMock.ExpectQuery(sqlName("CountUsedSeatsByEvent")).WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "registration_limit", "used"}).AddRow(int64(7), int32(50), int64(12)))
				s.CacheMock.ExpectSetNX(capacityKey, int64(38), 0).SetVal(true)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(37)
				s.Gateway.EXPECT().CreateOrder(gomock.Any(), gatewayRequest).Return(gateway.Order{Id: "order_1", Amount: 50000, Currency: "INR"}, nil)
				expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.Gateway.EXPECT().KeyId().Return("key_test")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","amount":50000,"currency":"INR","gatewayKey":"key_test"}`,
		},
		{
			name:    "missing counter with every seat held stays sold out",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(0)
				s.PgxMock.ExpectQuery(sqlName("CountUsedSeatsByEvent")).WithArgs(int64(7)).
					WillReturnRows(pgxmock.NewRows([]string{"id", "registration_limit", "used"}).AddRow(int64(7), int32(50), int64(50)))
				s.CacheMock.ExpectSetNX(capacityKey, int64(0), 0).SetVal(true)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(-1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(0)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"Registration limit reached"}`,
		},
		{
			name:    "seat count failure",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(0)
				s.PgxMock.ExpectQuery(sqlName("CountUsedSeatsByEvent")).WithArgs(int64(7)).WillReturnError(fmt.Errorf("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:    "gateway failure releases the seat",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(3)
				s.Gateway.EXPECT().CreateOrder(gomock.Any(), gatewayRequest).Return(gateway.Order{}, gateway.ErrGatewayRejected)
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(4)
			},
			expectedStatus: http.StatusBadGateway,
			expectedBody:   `{"error":"Payment order creation failed"}`,
		},
		{
			name:    "storage failure releases the seat",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(3)
				s.Gateway.EXPECT().CreateOrder(gomock.Any(), gatewayRequest).Return(gateway.Order{Id: "order_1", Amount: 50000, Currency: "INR"}, nil)
				expectInsertOrder().WillReturnError(fmt.Errorf("database error"))
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(4)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name:    "client amount is ignored",
			reqBody: `{"eventId": 7, "amount": 1}`,
			setupMock: func() {
				expectPrelude(paidEvent)
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectDecr(capacityKey).SetVal(3)
				s.Gateway.EXPECT().CreateOrder(gomock.Any(), gatewayRequest).Return(gateway.Order{Id: "order_1", Amount: 50000, Currency: "INR"}, nil)
				expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.Gateway.EXPECT().KeyId().Return("key_test")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","amount":50000,"currency":"INR","gatewayKey":"key_test"}`,
		},
		{
			name:    "unlimited event skips the capacity counter",
			reqBody: `{"eventId": 7}`,
			setupMock: func() {
				expectPrelude(eventFixture{id: 7, requiresPayment: true, amount: 50000})
				s.Gateway.EXPECT().CreateOrder(gomock.Any(), gatewayRequest).Return(gateway.Order{Id: "order_1", Amount: 50000, Currency: "INR"}, nil)
				expectInsertOrder().WillReturnResult(pgxmock.NewResult("INSERT", 1))
				s.Gateway.EXPECT().KeyId().Return("key_test")
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","amount":50000,"currency":"INR","gatewayKey":"key_test"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setupMock()

			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/payment/create-order", strings.NewReader(tc.reqBody)), registrantIdentity)
			w := httptest.NewRecorder()

			s.newHandler().createOrder(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))

			s.NoError(s.PgxMock.ExpectationsWereMet())
			s.NoError(s.CacheMock.ExpectationsWereMet())
		})
	}
}

func (s *PaymentHttpTestSuite) TestVerify() {
	capacityKey := fmt.Sprintf(constant.EachEventCapacityKey, int64(7))
	goodSig := gateway.Sign(testGatewaySecret, "order_1", "pay_1")
	badSig := gateway.Sign("other-secret", "order_1", "pay_1")
	limited := eventFixture{id: 7, requiresPayment: true, amount: 50000, limit: int32Ptr(50)}

	body := func(sig string) string {
		return fmt.Sprintf(`{"orderId":"order_1","paymentId":"pay_1","signature":"%s"}`, sig)
	}
	expectOrder := func(f orderFixture) {
		s.PgxMock.ExpectBegin()
		s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderByIdForUpdate")).WithArgs("order_1").WillReturnRows(paymentOrderRows(f))
		s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).WillReturnRows(eventRows(limited))
	}
	pending := orderFixture{id: "order_1", status: constant.PaymentStatePending, expiredAt: fixedNow.Add(10 * time.Minute)}

	tests := []struct {
		name           string
		reqBody        string
		setupMock      func()
		expectedStatus int
		expectedBody   string
		checkBody      func(resp model.VerifyPaymentResponse)
	}{
		{
			name:           "validation error - signature must be hex",
			reqBody:        body("not-hex"),
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"Signature":"hexadecimal"}}`,
		},
		{
			name:    "order not found",
			reqBody: body(goodSig),
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderByIdForUpdate")).WithArgs("order_1").WillReturnRows(pgxmock.NewRows(paymentOrderColumns))
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Payment order not found"}`,
		},
		{
			name:    "order owned by someone else",
			reqBody: body(goodSig),
			setupMock: func() {
				s.PgxMock.ExpectBegin()
				s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderByIdForUpdate")).WithArgs("order_1").
					WillReturnRows(paymentOrderRows(orderFixture{id: "order_1", registrantId: "user-2", status: constant.PaymentStatePending, expiredAt: fixedNow.Add(time.Minute)}))
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Payment order not found"}`,
		},
		{
			name:    "replay of the same proof returns the existing registration",
			reqBody: body(goodSig),
			setupMock: func() {
				expectOrder(orderFixture{id: "order_1", status: constant.PaymentStateVerified, paymentId: "pay_1", signature: goodSig, registrationId: "reg-1", expiredAt: fixedNow.Add(time.Minute)})
				s.PgxMock.ExpectQuery(sqlName("FindRegistrationById")).WithArgs("reg-1").
					WillReturnRows(registrationRows("reg-1", constant.PaymentStateVerified, constant.AttendanceStateIssued, "token-1", nil))
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusOK,
			checkBody: func(resp model.VerifyPaymentResponse) {
				s.True(resp.Success)
				s.Require().NotNil(resp.Registration)
				s.Equal("reg-1", resp.Registration.Id)
				s.Equal("token-1", resp.Registration.Ticket.Token)
			},
		},
		{
			name:    "verified order with a different payment",
			reqBody: body(goodSig),
			setupMock: func() {
				expectOrder(orderFixture{id: "order_1", status: constant.PaymentStateVerified, paymentId: "pay_0", signature: goodSig, registrationId: "reg-1", expiredAt: fixedNow.Add(time.Minute)})
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"success":false,"error":"Payment order already verified with a different payment"}`,
		},
		{
			name:    "failed order cannot be verified",
			reqBody: body(goodSig),
			setupMock: func() {
				expectOrder(orderFixture{id: "order_1", status: constant.PaymentStateFailed, expiredAt: fixedNow.Add(time.Minute)})
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"Payment order is no longer valid, please start a new payment"}`,
		},
		{
			name:    "expired order fails and releases the seat",
			reqBody: body(goodSig),
			setupMock: func() {
				expectOrder(orderFixture{id: "order_1", status: constant.PaymentStatePending, expiredAt: fixedNow})
				s.PgxMock.ExpectExec(sqlName("MarkPaymentOrderFailed")).
					WithArgs("order_1", pgtype.Text{String: "pay_1", Valid: true}, pgtype.Text{String: goodSig, Valid: true}).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				s.PgxMock.ExpectCommit()
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(10)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"Payment order expired, please start a new payment"}`,
		},
		{
			name:    "bad signature fails the order and releases the seat",
			reqBody: body(badSig),
			setupMock: func() {
				expectOrder(pending)
				s.PgxMock.ExpectExec(sqlName("MarkPaymentOrderFailed")).
					WithArgs("order_1", pgtype.Text{String: "pay_1", Valid: true}, pgtype.Text{String: badSig, Valid: true}).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				s.PgxMock.ExpectCommit()
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(10)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"success":false,"error":"Payment signature verification failed"}`,
		},
		{
			name:    "registration conflict rolls back",
			reqBody: body(goodSig),
			setupMock: func() {
				expectOrder(pending)
				s.PgxMock.ExpectQuery(sqlName("InsertRegistration")).
					WithArgs(pgxmock.AnyArg(), int64(7), "user-1", pgxmock.AnyArg(), "NIT", "CSE", "3",
						constant.PaymentStateVerified, pgxmock.AnyArg(), pgtype.Text{String: "order_1", Valid: true}).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}))
				s.PgxMock.ExpectRollback()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"success":false,"error":"Already registered"}`,
		},
		{
			name:    "success",
			reqBody: body(strings.ToUpper(goodSig)),
			setupMock: func() {
				expectOrder(pending)
				s.PgxMock.ExpectQuery(sqlName("InsertRegistration")).
					WithArgs(pgxmock.AnyArg(), int64(7), "user-1", pgxmock.AnyArg(), "NIT", "CSE", "3",
						constant.PaymentStateVerified, pgxmock.AnyArg(), pgtype.Text{String: "order_1", Valid: true}).
					WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(ts(fixedNow)))
				s.PgxMock.ExpectExec(sqlName("MarkPaymentOrderVerified")).
					WithArgs("order_1", pgtype.Text{String: "pay_1", Valid: true}, pgtype.Text{String: strings.ToUpper(goodSig), Valid: true}, pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				s.PgxMock.ExpectCommit()
				s.Publisher.EXPECT().Publish(gomock.Any(), constant.SubjectRegistrationConfirmed, gomock.Any()).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(resp model.VerifyPaymentResponse) {
				s.True(resp.Success)
				s.Require().NotNil(resp.Registration)
				s.Equal(constant.PaymentStateVerified, resp.Registration.PaymentState)
				s.Equal("order_1", resp.Registration.OrderId)
				s.Require().NotNil(resp.Registration.Ticket)
				s.NotEmpty(resp.Registration.QrCode)
			},
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setupMock()

			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(tc.reqBody)), registrantIdentity)
			w := httptest.NewRecorder()

			s.newHandler().verify(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			if tc.expectedBody != "" {
				s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))
			}
			if tc.checkBody != nil {
				var resp model.VerifyPaymentResponse
				s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
				tc.checkBody(resp)
			}

			s.NoError(s.PgxMock.ExpectationsWereMet())
			s.NoError(s.CacheMock.ExpectationsWereMet())
		})
	}
}

func (s *PaymentHttpTestSuite) TestCancel() {
	capacityKey := fmt.Sprintf(constant.EachEventCapacityKey, int64(7))

	tests := []struct {
		name           string
		reqBody        string
		setupMock      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "validation error",
			reqBody:        `{}`,
			setupMock:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","data":{"OrderId":"required"}}`,
		},
		{
			name:    "pending order is failed and the seat released",
			reqBody: `{"orderId":"order_1"}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("CancelPaymentOrder")).WithArgs("order_1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"event_id"}).AddRow(int64(7)))
				s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).
					WillReturnRows(eventRows(eventFixture{id: 7, requiresPayment: true, amount: 50000, limit: int32Ptr(50)}))
				s.CacheMock.ExpectExists(capacityKey).SetVal(1)
				s.CacheMock.ExpectIncr(capacityKey).SetVal(5)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","paymentState":"FAILED"}`,
		},
		{
			name:    "missing counter is not recreated on release",
			reqBody: `{"orderId":"order_1"}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("CancelPaymentOrder")).WithArgs("order_1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"event_id"}).AddRow(int64(7)))
				s.PgxMock.ExpectQuery(sqlName("FindEventById")).WithArgs(int64(7)).
					WillReturnRows(eventRows(eventFixture{id: 7, requiresPayment: true, amount: 50000, limit: int32Ptr(50)}))
				s.CacheMock.ExpectExists(capacityKey).SetVal(0)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","paymentState":"FAILED"}`,
		},
		{
			name:    "cancelling twice is a no-op",
			reqBody: `{"orderId":"order_1"}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("CancelPaymentOrder")).WithArgs("order_1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"event_id"}))
				s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderById")).WithArgs("order_1").
					WillReturnRows(paymentOrderRows(orderFixture{id: "order_1", status: constant.PaymentStateFailed, expiredAt: fixedNow}))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"orderId":"order_1","paymentState":"FAILED"}`,
		},
		{
			name:    "unknown order",
			reqBody: `{"orderId":"order_1"}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("CancelPaymentOrder")).WithArgs("order_1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"event_id"}))
				s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderById")).WithArgs("order_1").
					WillReturnRows(pgxmock.NewRows(paymentOrderColumns))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Payment order not found"}`,
		},
		{
			name:    "order owned by someone else",
			reqBody: `{"orderId":"order_1"}`,
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("CancelPaymentOrder")).WithArgs("order_1", "user-1").
					WillReturnRows(pgxmock.NewRows([]string{"event_id"}))
				s.PgxMock.ExpectQuery(sqlName("FindPaymentOrderById")).WithArgs("order_1").
					WillReturnRows(paymentOrderRows(orderFixture{id: "order_1", registrantId: "user-2", status: constant.PaymentStatePending, expiredAt: fixedNow}))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Payment order not found"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setupMock()

			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/payment/cancel", strings.NewReader(tc.reqBody)), registrantIdentity)
			w := httptest.NewRecorder()

			s.newHandler().cancel(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))

			s.NoError(s.PgxMock.ExpectationsWereMet())
			s.NoError(s.CacheMock.ExpectationsWereMet())
		})
	}
}

func (s *PaymentHttpTestSuite) TestExpire() {
	expiredColumns := []string{"id", "event_id", "amount", "currency", "display_name", "email", "event_title", "registration_limit"}

	tests := []struct {
		name           string
		setupMock      func()
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "database error",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnError(fmt.Errorf("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name: "nothing to expire",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns))
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"expired":0}`,
		},
		{
			name: "capacity restore error",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns).
						AddRow("order_1", int64(7), int64(50000), "INR", "Asha", "asha@example.com", "Hack Night", pgtype.Int4{Int32: 50, Valid: true}))
				s.CacheMock.ExpectMGet(fmt.Sprintf(constant.EachEventCapacityKey, int64(7))).SetVal([]interface{}{"3"})
				s.CacheMock.ExpectIncrBy(fmt.Sprintf(constant.EachEventCapacityKey, int64(7)), int64(1)).SetErr(redis.ErrClosed)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name: "success - seats restored only for limited events",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns).
						AddRow("order_1", int64(7), int64(50000), "INR", "Asha", "asha@example.com", "Hack Night", pgtype.Int4{Int32: 50, Valid: true}).
						AddRow("order_2", int64(7), int64(50000), "INR", "Ravi", "ravi@example.com", "Hack Night", pgtype.Int4{Int32: 50, Valid: true}).
						AddRow("order_3", int64(8), int64(20000), "INR", "Meera", "meera@example.com", "Quiz", pgtype.Int4{}))
				s.CacheMock.ExpectMGet(fmt.Sprintf(constant.EachEventCapacityKey, int64(7))).SetVal([]interface{}{"10"})
				s.CacheMock.ExpectIncrBy(fmt.Sprintf(constant.EachEventCapacityKey, int64(7)), int64(2)).SetVal(12)
				s.Publisher.EXPECT().Publish(gomock.Any(), constant.SubjectSendEmail, gomock.Any()).Return(nil, nil).Times(3)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"expired":3}`,
		},
		{
			name: "capacity read error",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns).
						AddRow("order_1", int64(7), int64(50000), "INR", "Asha", "asha@example.com", "Hack Night", pgtype.Int4{Int32: 50, Valid: true}))
				s.CacheMock.ExpectMGet(fmt.Sprintf(constant.EachEventCapacityKey, int64(7))).SetErr(redis.ErrClosed)
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
		{
			name: "uncached counters are left for seeding",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns).
						AddRow("order_1", int64(7), int64(50000), "INR", "Asha", "asha@example.com", "Hack Night", pgtype.Int4{Int32: 50, Valid: true}).
						AddRow("order_4", int64(9), int64(30000), "INR", "Kiran", "kiran@example.com", "Robotics", pgtype.Int4{Int32: 20, Valid: true}))
				s.CacheMock.ExpectMGet(
					fmt.Sprintf(constant.EachEventCapacityKey, int64(7)),
					fmt.Sprintf(constant.EachEventCapacityKey, int64(9)),
				).SetVal([]interface{}{nil, "4"})
				s.CacheMock.ExpectIncrBy(fmt.Sprintf(constant.EachEventCapacityKey, int64(9)), int64(1)).SetVal(5)
				s.Publisher.EXPECT().Publish(gomock.Any(), constant.SubjectSendEmail, gomock.Any()).Return(nil, nil).Times(2)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"expired":2}`,
		},
		{
			name: "publish error",
			setupMock: func() {
				s.PgxMock.ExpectQuery(sqlName("BulkExpirePaymentOrders")).WithArgs(int32(100), ts(fixedNow)).
					WillReturnRows(pgxmock.NewRows(expiredColumns).
						AddRow("order_3", int64(8), int64(20000), "INR", "Meera", "meera@example.com", "Quiz", pgtype.Int4{}))
				s.Publisher.EXPECT().Publish(gomock.Any(), constant.SubjectSendEmail, gomock.Any()).Return(nil, fmt.Errorf("publish error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"Internal Server Error"}`,
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			tc.setupMock()

			req := httptest.NewRequest(http.MethodPost, "/api/payment/expire", nil)
			w := httptest.NewRecorder()

			s.newHandler().expire(w, req)

			s.Equal(tc.expectedStatus, w.Code)
			s.Equal(tc.expectedBody, strings.TrimSpace(w.Body.String()))

			s.NoError(s.PgxMock.ExpectationsWereMet())
			s.NoError(s.CacheMock.ExpectationsWereMet())
		})
	}
}

func (s *PaymentHttpTestSuite) TestPaymentExpiredEmailBody() {
	in := s.newHandler()

	body := in.buildPaymentExpiredEmailBody(sqlgen.BulkExpirePaymentOrdersRow{
		ID:          "order_1",
		DisplayName: "Asha",
		EventTitle:  "Hack Night",
		Amount:      50000,
		Currency:    "INR",
	})

	s.Contains(body, "Hi Asha,")
	s.Contains(body, "Order ID: order_1")
	s.Contains(body, "Event: Hack Night")
	s.Contains(body, "500")
}
