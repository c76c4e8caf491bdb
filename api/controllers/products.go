package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bsthardware/storefront-backend/api/responses"
	"github.com/bsthardware/storefront-backend/api/validators"
	product "github.com/bsthardware/storefront-backend/internal/products"
	pkgerrors "github.com/bsthardware/storefront-backend/pkg/errors"
	"github.com/bsthardware/storefront-backend/pkg/logger"
)

const (
	imageFormField      = "image"
	multipartMemory     = 1 << 20
	invalidPriceMessage = "Price must be a non-negative number."
	invalidStockMessage = "Stock quantity must be a non-negative integer."
	maxCategoryQueryLen = 100
)

func ProductsList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input := product.ListProductsInput{Category: validators.ParseQueryString(r, "category", maxCategoryQueryLen)}
		rows, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

func ProductsGet(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		p, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, p)
	}
}

// ProductsCreate accepts JSON or multipart/form-data with an optional
// "image" file.
func ProductsCreate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, cleanup, err := readProductInput(w, r, maxUploadBytes)
		defer cleanup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ProductsUpdate(svc product.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, cleanup, err := readProductInput(w, r, maxUploadBytes)
		defer cleanup()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ProductsDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"message": "Product deleted successfully.", "id": id})
	}
}

// productRequest keeps price and stock raw so numbers and numeric strings
// are both accepted.
type productRequest struct {
	Name          string          `json:"name"`
	Description   *string         `json:"description"`
	Price         json.RawMessage `json:"price"`
	StockQuantity json.RawMessage `json:"stock_quantity"`
	Category      string          `json:"category"`
	ImageURL      *string         `json:"image_url"`
}

func readProductInput(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (product.ProductInput, func(), error) {
	noop := func() {}
	if isMultipart(r) {
		return readMultipartProduct(w, r, maxUploadBytes)
	}

	var body productRequest
	if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
		return product.ProductInput{}, noop, err
	}
	price, err := parsePrice(rawScalar(body.Price))
	if err != nil {
		return product.ProductInput{}, noop, err
	}
	stock, err := parseStock(rawScalar(body.StockQuantity))
	if err != nil {
		return product.ProductInput{}, noop, err
	}
	return product.ProductInput{
		Name:          body.Name,
		Description:   body.Description,
		Price:         price,
		StockQuantity: stock,
		Category:      body.Category,
		ImageURL:      body.ImageURL,
	}, noop, nil
}

func readMultipartProduct(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) (product.ProductInput, func(), error) {
	noop := func() {}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return product.ProductInput{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Image exceeds the upload size limit.")
		}
		return product.ProductInput{}, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	cleanup := func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	price, err := parsePrice(r.FormValue("price"))
	if err != nil {
		return product.ProductInput{}, cleanup, err
	}
	stock, err := parseStock(r.FormValue("stock_quantity"))
	if err != nil {
		return product.ProductInput{}, cleanup, err
	}

	input := product.ProductInput{
		Name:          r.FormValue("name"),
		Description:   optionalFormValue(r, "description"),
		Price:         price,
		StockQuantity: stock,
		Category:      r.FormValue("category"),
		ImageURL:      optionalFormValue(r, "image_url"),
	}

	file, header, err := r.FormFile(imageFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// keep the current image
	case err != nil:
		return product.ProductInput{}, cleanup, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	default:
		input.Image = &product.ImageUpload{Filename: header.Filename, Content: file}
		prev := cleanup
		cleanup = func() {
			_ = file.Close()
			prev()
		}
	}
	return input, cleanup, nil
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "multipart/form-data")
}

func optionalFormValue(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}

// rawScalar unwraps a JSON number or string. null and absent become "".
func rawScalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return string(trimmed)
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidPriceMessage)
	}
	return &d, nil
}

func parseStock(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidStockMessage)
	}
	return &n, nil
}

