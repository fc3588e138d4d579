package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StepOrder(t *testing.T) {
	n := New()

	var names []string
	for _, s := range n.Steps() {
		names = append(names, s.Name)
	}

	require.Equal(t, []string{
		"decode-entities",
		"strip-markup",
		"unicode-nfc",
		"strip-boilerplate",
		"strip-handles",
		"strip-urls",
		"collapse-whitespace",
		"trim-punctuation",
	}, names)
}

func TestNormalise_Empty(t *testing.T) {
	n := New()
	assert.Equal(t, "", n.Normalise(""))
	assert.Equal(t, "", n.Normalise("   \n\t "))
}

func TestNormalise_Cases(t *testing.T) {
	n := New(WithAddresses("Bole Medhanialem, Alem Bldg 2nd floor"))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "entities and markup",
			in:   "Dell XPS 13 &amp; charger<br>Like &quot;new&quot;",
			want: "Dell XPS 13 & charger\nLike \"new\"",
		},
		{
			name: "contact trailer is greedy",
			in:   "HP EliteBook 840\n8GB RAM\nCall 0911223344 for more\nfast delivery",
			want: "HP EliteBook 840\n8GB RAM",
		},
		{
			name: "call of duty is not a trailer",
			in:   "Call of Duty for PS5",
			want: "Call of Duty for PS5",
		},
		{
			name: "sold out prefix",
			in:   "SOLD OUT!! iPhone 12 Pro",
			want: "iPhone 12 Pro",
		},
		{
			name: "store address",
			in:   "Canon EOS 250D\nBole Medhanialem, Alem Bldg 2nd floor",
			want: "Canon EOS 250D",
		},
		{
			name: "address line",
			in:   "JBL Flip 5\nAddress: Piassa, next to the post office\nOriginal",
			want: "JBL Flip 5\n\nOriginal",
		},
		{
			name: "handles and links",
			in:   "AirPods Pro @gadgetshop https://t.me/gadgetshop www.example.com",
			want: "AirPods Pro",
		},
		{
			name: "email is kept",
			in:   "Write to sales@example.com",
			want: "Write to sales@example.com",
		},
		{
			name: "whitespace collapse",
			in:   "  Lenovo   ThinkPad\t\tT480 \n\n\n\n 16GB  ",
			want: "Lenovo ThinkPad T480\n\n16GB",
		},
		{
			name: "leading punctuation",
			in:   "- . Samsung A52 .",
			want: "Samsung A52",
		},
		{
			name: "plus suffix survives",
			in:   "Galaxy S10+",
			want: "Galaxy S10+",
		},
		{
			name: "call inside a sentence is kept",
			in:   "Samsung A12\nDual SIM, video call, 4GB RAM 64GB storage\nBrand new",
			want: "Samsung A12\nDual SIM, video call, 4GB RAM 64GB storage\nBrand new",
		},
		{
			name: "trailing call keeps its word",
			in:   "Supports video call",
			want: "Supports video call",
		},
		{
			name: "contact line without residue",
			in:   "Redmi Note 11\nContact us:\nBole branch",
			want: "Redmi Note 11",
		},
		{
			name: "inbox with handle",
			in:   "PS4 slim 1TB, inbox @gameshop for price",
			want: "PS4 slim 1TB",
		},
		{
			name: "repeated trailers",
			in:   "iPad 9, Call , Call , Call , Call , Call , Call",
			want: "iPad 9",
		},
		{
			name: "nested entities",
			in:   "Tom &amp;amp;amp;amp;amp;amp; Jerry",
			want: "Tom & Jerry",
		},
		{
			name: "orphan separators after stripping",
			in:   "Samsung Galaxy S10, , Call , ",
			want: "Samsung Galaxy S10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalise(tt.in))
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	n := New(WithAddresses("Bole Road"))

	samples := []string{
		"",
		"Samsung Galaxy S10, Price 8000 birr, Call 0911223344, @sellerhandle",
		"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt; text",
		"<div>Macbook Air M1</div><div>256GB</div><br/><br/><br/>Bole Road",
		"  ...  --  ",
		"out of stock - out of stock - Sony WH-1000XM4",
		"Price: 12,500 ETB\n\n\n\nContact us: @shop",
		"Nokia 3310 &#39;classic&#39; &apos;retro&apos;",
		"Line one\r\nLine two\x00\x07",
		"@onlyhandle",
		"Tom &amp;amp;amp;amp;amp;amp; Jerry",
		"&amp;amp;amp;amp;amp;lt;br&amp;amp;amp;amp;amp;gt;Nested",
		"Samsung A12\nDual SIM, video call, 4GB RAM 64GB storage\nBrand new",
		"x, Call , Call , Call , Call , Call , Call , Call",
	}

	for _, s := range samples {
		once := n.Normalise(s)
		twice := n.Normalise(once)
		assert.Equal(t, once, twice, "input %q", s)
	}
}

func TestTitle(t *testing.T) {
	n := New(WithTitleLength(20))

	assert.Equal(t, "Samsung Galaxy S10", n.Title("Samsung Galaxy S10\n128GB"))
	assert.Equal(t, "Second line", n.Title("\n\nSecond line"))
	assert.Equal(t, "", n.Title(""))
	assert.Equal(t, "Apple MacBook Pro", n.Title("Apple MacBook Pro 2019 16 inch"))
}

func TestSteps_Independent(t *testing.T) {
	assert.Equal(t, "a & b", DecodeEntities("a &amp; b"))
	assert.Equal(t, "a\nb", StripMarkup("<b>a</b><br>b"))
	assert.Equal(t, "\u00e9", NormaliseUnicode("e\u0301"))
	assert.Equal(t, "hi ", StripHandles("hi @there"))
	assert.Equal(t, "see ", StripURLs("see https://x.y/z"))
	assert.Equal(t, "a b", CollapseWhitespace("  a \t  b  "))
	assert.Equal(t, "x", TrimPunctuation("-- x ..."))
}
