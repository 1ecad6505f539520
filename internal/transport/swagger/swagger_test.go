package swagger_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/dayflow/internal/transport/swagger"
)

var _ = Describe("OpenAPI document", func() {
	It("should load and validate", func() {
		doc, err := swagger.Load(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Paths.Find("/auth/login")).NotTo(BeNil())
		Expect(doc.Paths.Find("/payroll/generate")).NotTo(BeNil())
	})

	It("should be served as YAML", func() {
		w := httptest.NewRecorder()
		swagger.SpecHandler()(w, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("application/yaml"))
		Expect(w.Body.Bytes()).To(Equal(swagger.Document()))
	})
})
