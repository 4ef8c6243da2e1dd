package apierr

import "net/http"

func statusOf(vr variant) int {
	switch vr := vr.(type) {
	case validationVariant:
		return http.StatusBadRequest
	case statusVariant:
		return vr.err.Status
	case duplicateKeyVariant:
		return http.StatusConflict
	case castVariant:
		return http.StatusBadRequest
	case parseVariant:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
