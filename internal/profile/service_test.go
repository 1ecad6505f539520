package profile_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/dayflow/internal"
	"github.com/frahmantamala/dayflow/internal/core/datamodel/datamodeltest"
	userDatamodel "github.com/frahmantamala/dayflow/internal/core/datamodel/user"
	"github.com/frahmantamala/dayflow/internal/profile"
	"github.com/frahmantamala/dayflow/internal/transport"
	userPostgres "github.com/frahmantamala/dayflow/internal/user/postgres"
	"github.com/frahmantamala/dayflow/pkg/logger"
)

func ptr(s string) *string { return &s }

var _ = Describe("Profile", func() {
	var (
		ctx     context.Context
		root    string
		service *profile.Service
		userID  int64
	)

	onDisk := func(publicPath string) string {
		return filepath.Join(root, "profiles", path.Base(publicPath))
	}

	BeforeEach(func() {
		ctx = context.Background()
		db, err := datamodeltest.Open()
		Expect(err).NotTo(HaveOccurred())

		u := &userDatamodel.User{Name: "John Doe", Email: "john@example.com"}
		Expect(datamodeltest.InsertUser(ctx, db, u)).To(Succeed())
		userID = u.ID
		Expect(datamodeltest.InsertUser(ctx, db, &userDatamodel.User{Name: "Jane", Email: "jane@example.com"})).To(Succeed())

		root = GinkgoT().TempDir()
		store, err := profile.NewDiskStore(root)
		Expect(err).NotTo(HaveOccurred())
		service = profile.NewService(userPostgres.NewUserRepository(db), store, logger.Discard())
	})

	Describe("UpdateProfile", func() {
		It("should change only the given fields", func() {
			u, err := service.UpdateProfile(ctx, userID, profile.UpdateProfileDTO{
				Phone:      ptr(" 555-0100 "),
				Department: ptr(""),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Phone).To(Equal("555-0100"))
			Expect(u.Name).To(Equal("John Doe"))
			Expect(u.Department).To(BeEmpty())
		})

		It("should lowercase a new email", func() {
			u, err := service.UpdateProfile(ctx, userID, profile.UpdateProfileDTO{Email: ptr("John.Doe@Example.com")})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Email).To(Equal("john.doe@example.com"))
		})

		It("should refuse an email another user has", func() {
			_, err := service.UpdateProfile(ctx, userID, profile.UpdateProfileDTO{Email: ptr("JANE@example.com")})
			Expect(errors.Is(err, profile.ErrEmailTaken)).To(BeTrue())
		})

		It("should report a missing user", func() {
			_, err := service.UpdateProfile(ctx, 999, profile.UpdateProfileDTO{Name: ptr("Ghost")})
			Expect(errors.Is(err, profile.ErrProfileMissing)).To(BeTrue())
		})
	})

	Describe("pictures", func() {
		It("should replace the previous file on upload", func() {
			first, err := service.UploadPicture(ctx, userID, encodePNG(40, 40))
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HavePrefix("/uploads/profiles/"))
			Expect(onDisk(first)).To(BeAnExistingFile())

			second, err := service.UploadPicture(ctx, userID, encodeJPEG(40, 80))
			Expect(err).NotTo(HaveOccurred())
			Expect(second).NotTo(Equal(first))
			Expect(onDisk(first)).NotTo(BeAnExistingFile())
			Expect(onDisk(second)).To(BeAnExistingFile())

			u, err := service.GetProfile(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ProfileImage).To(Equal(second))
		})

		It("should reject something that is not an image", func() {
			_, err := service.UploadPicture(ctx, userID, []byte("%PDF-1.4"))
			Expect(errors.Is(err, profile.ErrInvalidImage)).To(BeTrue())
		})

		It("should reject an image whose dimensions exceed the budget", func() {
			_, err := service.UploadPicture(ctx, userID, withDimensions(encodePNG(8, 8), 12000, 12000))
			Expect(err).To(MatchError(ContainSubstring("must not exceed 4096x4096 pixels")))

			u, err := service.GetProfile(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ProfileImage).To(BeEmpty())
		})

		It("should delete the picture and clear the path", func() {
			p, err := service.UploadPicture(ctx, userID, encodePNG(10, 10))
			Expect(err).NotTo(HaveOccurred())

			Expect(service.DeletePicture(ctx, userID)).To(Succeed())
			Expect(onDisk(p)).NotTo(BeAnExistingFile())

			u, err := service.GetProfile(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ProfileImage).To(BeEmpty())

			Expect(errors.Is(service.DeletePicture(ctx, userID), profile.ErrNoPicture)).To(BeTrue())
		})
	})

	Describe("Handler.UploadPicture", func() {
		var handler *profile.Handler

		BeforeEach(func() {
			handler = profile.NewHandler(transport.NewBaseHandler(logger.Discard()), service, 64<<10)
		})

		upload := func(field string, data []byte) *httptest.ResponseRecorder {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			part, err := mw.CreateFormFile(field, "me.png")
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write(data)
			Expect(err).NotTo(HaveOccurred())
			Expect(mw.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/profile/upload", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req = req.WithContext(internal.ContextWithUser(req.Context(), &internal.CurrentUser{ID: userID}))
			w := httptest.NewRecorder()
			handler.UploadPicture(w, req)
			return w
		}

		It("should store the file and return its path", func() {
			w := upload("profileImage", encodePNG(20, 20))
			Expect(w.Code).To(Equal(http.StatusOK))

			var env struct {
				Success bool                    `json:"success"`
				Data    profile.PictureResponse `json:"data"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
			Expect(env.Success).To(BeTrue())
			Expect(onDisk(env.Data.ProfileImage)).To(BeAnExistingFile())
		})

		It("should answer 400 without the file field", func() {
			w := upload("avatar", encodePNG(20, 20))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should answer 400 for an oversized file", func() {
			w := upload("profileImage", make([]byte, 200<<10))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})

var _ = Describe("DiskStore", func() {
	It("should ignore files that are already gone", func() {
		store, err := profile.NewDiskStore(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Remove("/uploads/profiles/missing.png")).To(Succeed())
	})

	It("should create the profiles directory", func() {
		root := GinkgoT().TempDir()
		_, err := profile.NewDiskStore(root)
		Expect(err).NotTo(HaveOccurred())

		info, err := os.Stat(filepath.Join(root, "profiles"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.IsDir()).To(BeTrue())
	})
})
