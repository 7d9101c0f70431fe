package internal_test

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/grafana-sync/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AppError", func() {
	It("keeps sentinels comparable after adding a cause", func() {
		cause := errors.New("duplicate key")
		err := internal.ErrMembershipExists.WithCause(cause)

		Expect(errors.Is(err, internal.ErrMembershipExists)).To(BeTrue())
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(internal.ErrMembershipExists.Cause).To(BeNil())
	})

	It("is found through wrapping", func() {
		wrapped := fmt.Errorf("outer: %w", internal.NewExternalError("platform unavailable", internal.ErrCodePlatformRequestFailed, errors.New("503")))

		appErr, ok := internal.IsAppError(wrapped)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(http.StatusBadGateway))
		Expect(appErr.Code).To(Equal(internal.ErrCodePlatformRequestFailed))
	})

	It("reports the first validation message", func() {
		err := internal.NewValidationFieldError("name", "name is required", "REQUIRED")
		Expect(err.Error()).To(Equal("name is required"))
		Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("includes the cause of external errors in JSON", func() {
		err := internal.NewExternalError("sync failed", internal.ErrCodeSyncFailed, errors.New("connection refused"))
		data, marshalErr := err.MarshalJSON()
		Expect(marshalErr).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring("sync failed: connection refused"))
	})
})
