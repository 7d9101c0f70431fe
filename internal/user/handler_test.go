package user_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/grafana-sync/internal/platform"
	"github.com/frahmantamala/grafana-sync/internal/transport"
	"github.com/frahmantamala/grafana-sync/internal/user"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("User Handler", func() {
	var router *chi.Mux

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc := user.NewService(NewMockRepository(), platform.NewMockClient(), lg)
		h := user.NewHandler(transport.NewBaseHandler(lg), svc)

		router = chi.NewRouter()
		router.Get("/users", h.ListUsers)
		router.Post("/users", h.CreateUser)
		router.Get("/users/{id}", h.GetUser)
		router.Put("/users/{id}", h.UpdateUser)
		router.Delete("/users/{id}", h.DeleteUser)
		router.Post("/users/{id}/provision", h.ProvisionUser)

		_, err := svc.Create(context.Background(), user.CreateUserRequest{UserID: "0001", Name: "Yamada"})
		Expect(err).NotTo(HaveOccurred())
	})

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
		return rec
	}

	It("lists users with paging metadata", func() {
		rec := serve(http.MethodGet, "/users?limit=10&search=0001", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp user.ListUsersResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Total).To(Equal(int64(1)))
		Expect(resp.Limit).To(Equal(10))
	})

	It("rejects a negative limit", func() {
		rec := serve(http.MethodGet, "/users?limit=-1", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("creates users and reports duplicates as conflicts", func() {
		rec := serve(http.MethodPost, "/users", `{"user_id":"0002","name":"Sato"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		rec = serve(http.MethodPost, "/users", `{"user_id":"0002","name":"Sato again"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring("USER_ID_TAKEN"))
	})

	It("rejects unknown fields", func() {
		rec := serve(http.MethodPost, "/users", `{"user_id":"0003","name":"x","role":"Admin"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for missing users", func() {
		Expect(serve(http.MethodGet, "/users/999", "").Code).To(Equal(http.StatusNotFound))
		Expect(serve(http.MethodGet, "/users/abc", "").Code).To(Equal(http.StatusBadRequest))
	})

	It("provisions a user without a body", func() {
		rec := serve(http.MethodPost, "/users/1/provision", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var u user.User
		Expect(json.Unmarshal(rec.Body.Bytes(), &u)).To(Succeed())
		Expect(u.Status).To(Equal(user.StatusActive))
	})

	It("updates and deletes", func() {
		rec := serve(http.MethodPut, "/users/1", `{"status":"disabled"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(serve(http.MethodDelete, "/users/1", "").Code).To(Equal(http.StatusNoContent))
	})
})
