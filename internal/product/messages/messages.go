// Package messages provides the localized status messages returned by the product API.
package messages

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	ProductCreated      = "product.created"
	ProductCreateFailed = "product.create_failed"
	ProductNotFound     = "product.not_found"
	ProductDuplicate    = "product.duplicate_name"
	ProductUpdated      = "product.updated"
	ProductsCleared     = "products.cleared"
	ProductDeleted      = "product.deleted"
	ProductsDeleted     = "products.deleted"
	InternalError       = "error.internal"
	InvalidID           = "error.invalid_id"
	InvalidBody         = "error.invalid_body"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		ProductCreated:      "Product created successfully.",
		ProductCreateFailed: "Failed to create product.",
		ProductNotFound:     "Product with the given ID does not exist.",
		ProductDuplicate:    "A product with this name already exists. Please choose a different name.",
		ProductUpdated:      "Product updated.",
		ProductsCleared:     "All products have been deleted.",
		ProductDeleted:      "Product deleted.",
		ProductsDeleted:     "Products deleted successfully.",
		InternalError:       "Internal server error.",
		InvalidID:           "Invalid product ID.",
		InvalidBody:         "Invalid request body.",
	},
	language.Korean: {
		ProductCreated:      "상품이 성공적으로 추가되었습니다.",
		ProductCreateFailed: "상품 추가 과정에서 문제가 발생했습니다.",
		ProductNotFound:     "해당 ID의 상품이 존재하지 않습니다.",
		ProductDuplicate:    "수정할 이름을 가진 상품이 이미 존재합니다. 다른 이름을 입력하세요.",
		ProductUpdated:      "상품이 수정되었습니다.",
		ProductsCleared:     "모든 상품을 삭제했습니다.",
		ProductDeleted:      "상품이 삭제되었습니다.",
		ProductsDeleted:     "상품들이 성공적으로 제거되었습니다.",
		InternalError:       "서버 내부 오류가 발생했습니다.",
		InvalidID:           "잘못된 상품 ID입니다.",
		InvalidBody:         "잘못된 요청 본문입니다.",
	},
}

// Translator resolves message keys to text in the language requested by the client.
type Translator struct {
	supported []language.Tag
	matcher   language.Matcher
	catalog   catalog.Catalog
}

// NewTranslator builds the message catalog. defaultLanguage is used when the client
// sends no Accept-Language header or none of its languages is supported.
func NewTranslator(defaultLanguage string) (*Translator, error) {
	fallback, err := language.Parse(defaultLanguage)
	if err != nil {
		return nil, fmt.Errorf("invalid default language %q: %w", defaultLanguage, err)
	}
	if _, ok := translations[fallback]; !ok {
		return nil, fmt.Errorf("unsupported default language %q", defaultLanguage)
	}

	b := catalog.NewBuilder(catalog.Fallback(fallback))
	for tag, entries := range translations {
		for key, text := range entries {
			if err := b.SetString(tag, key, text); err != nil {
				return nil, fmt.Errorf("failed to register message %s for %s: %w", key, tag, err)
			}
		}
	}

	// the first supported tag is the matcher's fallback
	supported := []language.Tag{fallback}
	for _, tag := range b.Languages() {
		if tag != fallback {
			supported = append(supported, tag)
		}
	}

	return &Translator{
		supported: supported,
		matcher:   language.NewMatcher(supported),
		catalog:   b,
	}, nil
}

// Language picks the best supported language for an Accept-Language header value.
func (t *Translator) Language(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.supported[0]
	}
	_, idx, _ := t.matcher.Match(tags...)
	return t.supported[idx]
}

// Text returns the message for key in the language best matching acceptLanguage.
func (t *Translator) Text(acceptLanguage, key string) string {
	p := message.NewPrinter(t.Language(acceptLanguage), message.Catalog(t.catalog))
	return p.Sprintf(key)
}
