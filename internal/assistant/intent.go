package assistant

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type rule struct {
	intent  Intent
	phrases []string
	// keyword: остаток сообщения после фразы является ключевым словом.
	keyword bool
}

// Правила проверяются по порядку, первая совпавшая фраза определяет намерение.
// Более длинные фразы стоят раньше своих префиксов.
var rules = []rule{
	{intent: IntentProfile, phrases: []string{"thông tin cá nhân", "tài khoản", "tôi là ai", "who am i", "profile", "account"}},
	{intent: IntentCart, phrases: []string{"giỏ hàng", "cart", "basket"}},
	{intent: IntentOrders, phrases: []string{"đơn hàng", "orders", "order"}},
	{intent: IntentPromotions, phrases: []string{"khuyến mãi", "giảm giá", "promotions", "promotion", "discounts", "discount", "sale"}},
	{intent: IntentBestSellers, phrases: []string{"bán chạy", "nổi bật", "best sellers", "best seller", "bestsellers", "bestseller", "best-selling", "popular", "hot"}},
	{intent: IntentPrice, phrases: []string{"giá của", "giá", "price of", "prices", "price", "how much is", "how much"}, keyword: true},
	{intent: IntentCategories, phrases: []string{"danh mục", "loại sản phẩm", "categories", "category"}},
	{intent: IntentStoreInfo, phrases: []string{"thông tin cửa hàng", "cấu hình", "store info", "about the store", "about us", "config"}},
	{intent: IntentSearch, phrases: []string{"tìm kiếm", "tìm", "thông tin", "sản phẩm", "search for", "search", "look for", "find", "products", "product"}, keyword: true},
	{intent: IntentAddress, phrases: []string{"địa chỉ", "cửa hàng", "address", "stores", "store", "location"}},
	{intent: IntentContact, phrases: []string{"liên hệ", "hỗ trợ", "contact", "support", "hotline"}},
	{intent: IntentBlogs, phrases: []string{"bài viết", "tin tức", "blogs", "blog", "news", "articles", "article"}},
	{intent: IntentOverview, phrases: []string{"mọi thứ", "trang web", "có gì", "everything", "overview", "what do you have"}},
	{intent: IntentGreeting, phrases: []string{"chào", "hello", "hey", "hi"}},
}

// Слова, которые отбрасываются в начале ключевого слова.
var fillers = map[string]bool{
	"của": true, "về": true, "kiếm": true, "sản": true, "phẩm": true,
	"of": true, "for": true, "the": true, "a": true, "an": true, "me": true,
	"is": true, "are": true, "product": true, "products": true,
}

// Classify определяет намерение по ключевым словам сообщения.
func Classify(message string) Intent {
	intent, _ := Parse(message)
	return intent
}

// Parse определяет намерение сообщения и, для поиска и цен, ключевое слово.
func Parse(message string) (Intent, string) {
	lower := strings.ToLower(strings.TrimSpace(message))
	for _, r := range rules {
		for _, phrase := range r.phrases {
			idx := indexWord(lower, phrase)
			if idx < 0 {
				continue
			}
			if !r.keyword {
				return r.intent, ""
			}
			return r.intent, extractKeyword(lower[idx+len(phrase):])
		}
	}
	return IntentGeneral, ""
}

// indexWord возвращает позицию phrase в s, если она стоит на границах слов, иначе -1.
func indexWord(s, phrase string) int {
	for from := 0; from <= len(s); {
		i := strings.Index(s[from:], phrase)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(phrase)
		if boundaryBefore(s, i) && boundaryAfter(s, end) {
			return i
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		from = i + size
	}
	return -1
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

func extractKeyword(rest string) string {
	words := strings.FieldsFunc(rest, func(r rune) bool {
		return !isWordRune(r) && r != '-' && r != '.'
	})
	for len(words) > 0 && fillers[words[0]] {
		words = words[1:]
	}
	return strings.Trim(strings.Join(words, " "), ".-")
}
