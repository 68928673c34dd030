package handlers

import (
	"database/sql"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nepstays/stays-backend/internal/database"
	"github.com/nepstays/stays-backend/internal/middleware"
	"github.com/nepstays/stays-backend/internal/models"
	"github.com/nepstays/stays-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// PaymentHandler handles the eSewa payment handshake
type PaymentHandler struct {
	paymentRepo  *database.PaymentRepository
	bookingRepo  *database.BookingRepository
	propertyRepo *database.PropertyRepository
	esewaService *services.ESewaService
	frontendURL  string
	logger       *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	paymentRepo *database.PaymentRepository,
	bookingRepo *database.BookingRepository,
	propertyRepo *database.PropertyRepository,
	esewaService *services.ESewaService,
	frontendURL string,
	logger *logrus.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		paymentRepo:  paymentRepo,
		bookingRepo:  bookingRepo,
		propertyRepo: propertyRepo,
		esewaService: esewaService,
		frontendURL:  frontendURL,
		logger:       logger,
	}
}

// Initiate creates a pending payment attempt for a booking and hands the
// client everything it needs to redirect the user to the gateway. Each call
// mints a fresh transaction id, so retries produce distinct attempts.
// POST /api/payments/initiate
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid booking id")
		return
	}

	booking, err := h.bookingRepo.GetByID(bookingID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Booking not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if booking.UserID != userCtx.UserID {
		respondError(c, http.StatusUnauthorized, "Not authorized to pay for this booking")
		return
	}
	if booking.Status != models.BookingStatusPending {
		respondError(c, http.StatusBadRequest, "Booking is not awaiting payment")
		return
	}

	property, err := h.propertyRepo.GetByID(booking.PropertyID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	payment := &models.Payment{
		BookingID:     booking.ID,
		Amount:        booking.TotalPrice,
		TransactionID: h.esewaService.NewTransactionID(),
		Status:        models.PaymentStatusPending,
	}
	if err := h.paymentRepo.Create(payment); err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"booking_id":     booking.ID,
		"transaction_id": payment.TransactionID,
	}).Info("Payment initiated")

	respondData(c, http.StatusOK, gin.H{
		"paymentId":     payment.ID,
		"transactionId": payment.TransactionID,
		"paymentUrl":    h.esewaService.PaymentURL(),
		"esewaParams":   h.esewaService.BuildParams(payment.TransactionID, payment.Amount),
		"bookingDetails": gin.H{
			"id":           booking.ID,
			"propertyName": property.Name,
			"checkIn":      booking.CheckIn.Format(models.DateOnly),
			"checkOut":     booking.CheckOut.Format(models.DateOnly),
			"guests":       booking.Guests,
			"totalPrice":   booking.TotalPrice,
		},
	})
}

// Verify is the gateway's return URL. eSewa sends the user back here with
// oid (our transaction id), amt and refId in the query string. Every failure
// mode converges on the frontend failure page; distinct causes are only
// logged. Repeated callbacks for the same transaction are harmless because
// the completion and confirmation updates are status-guarded.
// GET /api/payments/verify
func (h *PaymentHandler) Verify(c *gin.Context) {
	orderID := c.Query("oid")
	amount := c.Query("amt")
	referenceID := c.Query("refId")

	if orderID == "" || amount == "" || referenceID == "" {
		h.logger.WithFields(logrus.Fields{
			"oid":    orderID,
			"amt":    amount,
			"ref_id": referenceID,
		}).Warn("Payment callback missing parameters")
		h.redirectFailure(c, orderID)
		return
	}

	payment, err := h.paymentRepo.GetByTransactionID(orderID)
	if err == sql.ErrNoRows {
		h.logger.WithField("oid", orderID).Warn("Payment callback for unknown transaction")
		h.redirectFailure(c, orderID)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("Payment lookup failed")
		h.redirectFailure(c, orderID)
		return
	}

	if err := h.esewaService.Verify(orderID, amount, referenceID); err != nil {
		h.logger.WithError(err).WithField("oid", orderID).Warn("Payment verification failed")
		if markErr := h.paymentRepo.MarkFailed(payment.ID, models.JSONB{
			"oid":   orderID,
			"amt":   amount,
			"refId": referenceID,
			"error": err.Error(),
		}); markErr != nil && markErr != sql.ErrNoRows {
			h.logger.WithError(markErr).Error("Failed to record payment failure")
		}
		h.redirectFailure(c, orderID)
		return
	}

	completed, err := h.paymentRepo.CompleteIfPending(payment.ID, models.JSONB{
		"oid":   orderID,
		"amt":   amount,
		"refId": referenceID,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to complete payment")
		h.redirectFailure(c, orderID)
		return
	}
	if !completed {
		// The guarded update touched nothing, so some earlier callback
		// already settled this attempt. Re-read the row: only a completed
		// payment may confirm the booking; a failed one must not.
		current, err := h.paymentRepo.GetByID(payment.ID)
		if err != nil {
			h.logger.WithError(err).Error("Payment re-read failed")
			h.redirectFailure(c, orderID)
			return
		}
		if current.Status != models.PaymentStatusCompleted {
			h.logger.WithFields(logrus.Fields{
				"payment_id": payment.ID,
				"status":     current.Status,
			}).Warn("Callback for a payment no longer completable")
			h.redirectFailure(c, orderID)
			return
		}
		h.logger.WithField("payment_id", payment.ID).Info("Payment already settled")
	}

	confirmed, err := h.bookingRepo.ConfirmIfPending(payment.BookingID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to confirm booking")
		h.redirectFailure(c, orderID)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": payment.BookingID,
		"confirmed":  confirmed,
	}).Info("Payment verified")

	h.redirectSuccess(c, orderID, referenceID)
}

// Status returns a payment with its booking, owner only
// GET /api/payments/status/:paymentId
func (h *PaymentHandler) Status(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.paymentRepo.GetByID(paymentID)
	if err == sql.ErrNoRows {
		respondError(c, http.StatusNotFound, "Payment not found")
		return
	}
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	booking, err := h.bookingRepo.GetByID(payment.BookingID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if booking.UserID != userCtx.UserID {
		respondError(c, http.StatusUnauthorized, "Not authorized to access this payment")
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"payment": payment,
		"booking": booking,
	})
}

func (h *PaymentHandler) redirectSuccess(c *gin.Context, orderID, referenceID string) {
	q := url.Values{}
	q.Set("oid", orderID)
	q.Set("refId", referenceID)
	c.Redirect(http.StatusFound, h.frontendURL+"/payment/success?"+q.Encode())
}

func (h *PaymentHandler) redirectFailure(c *gin.Context, orderID string) {
	q := url.Values{}
	if orderID != "" {
		q.Set("oid", orderID)
	}
	target := h.frontendURL + "/payment/failure"
	if encoded := q.Encode(); encoded != "" {
		target += "?" + encoded
	}
	c.Redirect(http.StatusFound, target)
}
