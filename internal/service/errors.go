package service

import (
	"errors"

	"starmf-gateway/internal/bse"
	"starmf-gateway/pkg/apperror"
)

// mapExchangeError translates a gateway failure into the API error catalog.
// Validation failures surface as 400s with the field message verbatim;
// exchange rejections keep the exchange's remarks so support can match them
// against BSE tickets. Anything that is not an ErrorRecord is internal.
func mapExchangeError(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	rec, ok := bse.AsErrorRecord(err)
	if !ok {
		return apperror.InternalError(err)
	}

	switch rec.Kind {
	case bse.KindValidationError:
		return apperror.Validation(rec.Message)
	case bse.KindAuthError:
		return apperror.ErrExchangeAuth(rec)
	case bse.KindSessionExpired:
		return apperror.ErrExchangeSessionExpired(rec)
	case bse.KindTransportError:
		return apperror.ErrExchangeUnreachable(rec)
	case bse.KindExchangeRejection:
		return apperror.ErrExchangeRejected(rec.Message, rec)
	case bse.KindProtocolFault:
		return apperror.ErrExchangeProtocol(rec)
	default:
		return apperror.InternalError(rec)
	}
}
