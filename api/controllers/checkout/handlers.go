package checkout

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maisonvelaire/storefront-backend/api/responses"
	"github.com/maisonvelaire/storefront-backend/api/validators"
	cartsvc "github.com/maisonvelaire/storefront-backend/internal/cart"
	checkoutsvc "github.com/maisonvelaire/storefront-backend/internal/checkout"
	"github.com/maisonvelaire/storefront-backend/pkg/cookies"
	pkgerrors "github.com/maisonvelaire/storefront-backend/pkg/errors"
	"github.com/maisonvelaire/storefront-backend/pkg/logger"
	"github.com/maisonvelaire/storefront-backend/pkg/types"
)

// BeginRequest is the shipping form submission that opens an attempt. The
// cart itself comes from the shopper's cookie, not the body.
type BeginRequest struct {
	CustomerEmail   string                `json:"customer_email" validate:"required,email"`
	ShippingAddress types.ShippingAddress `json:"shipping_address"`
}

// CompleteRequest is the gateway callback relayed by the browser. Exactly
// one of success or failure is set; neither means the modal was dismissed.
type CompleteRequest struct {
	Success *checkoutsvc.SuccessPayload `json:"success,omitempty"`
	Failure *checkoutsvc.FailurePayload `json:"failure,omitempty"`
}

// Begin creates the order and the gateway intent from the cookie cart and
// returns the session the hosted checkout modal needs.
func Begin(jar *cookies.Jar, svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload BeginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := cartsvc.Normalize(cookies.DecodeSlice[cartsvc.Line](jar.Load(r, cookies.KindCart)))
		session, err := svc.Begin(r.Context(), checkoutsvc.BeginInput{
			CustomerEmail:   payload.CustomerEmail,
			Items:           items,
			ShippingAddress: payload.ShippingAddress,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// Complete resolves the attempt from the gateway callback. A confirmed
// payment clears the cart cookie: the order has superseded it.
func Complete(jar *cookies.Jar, svc *checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		attemptID := chi.URLParam(r, "attemptId")
		if attemptID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "attempt id is required"))
			return
		}

		var payload CompleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Complete(r.Context(), checkoutsvc.CompleteInput{
			AttemptID: attemptID,
			Success:   payload.Success,
			Failure:   payload.Failure,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if outcome.State == checkoutsvc.StateComplete {
			jar.Clear(w, cookies.KindCart)
		}
		responses.WriteSuccess(w, outcome)
	}
}
