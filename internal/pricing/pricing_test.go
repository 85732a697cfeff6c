package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testItem(price string, variants ...Variant) Item {
	return Item{
		ID:       uuid.New(),
		Name:     "Paneer Tikka",
		Price:    dec(price),
		Variants: variants,
	}
}

func activeOffer(item Item, target Target, price string) Offer {
	return Offer{
		ID:         uuid.New(),
		MenuItemID: item.ID,
		Target:     target,
		OfferPrice: dec(price),
		StartsAt:   now.Add(-time.Hour),
		EndsAt:     now.Add(time.Hour),
	}
}

func upcomingOffer(item Item, target Target, price string) Offer {
	o := activeOffer(item, target, price)
	o.StartsAt = now.Add(30 * time.Minute)
	o.EndsAt = now.Add(2 * time.Hour)
	return o
}

func TestResolve_NoOffers(t *testing.T) {
	item := testItem("200")

	q := Resolve(item, nil, now)

	if q.HasOffer {
		t.Error("expected no offer")
	}
	if !q.DisplayPrice.Equal(dec("200")) {
		t.Errorf("expected display price 200, got %s", q.DisplayPrice)
	}
	if q.DiscountPercent != 0 {
		t.Errorf("expected 0%% discount, got %d", q.DiscountPercent)
	}
}

func TestResolve_SingleActiveItemOffer(t *testing.T) {
	item := testItem("200")
	offers := []Offer{activeOffer(item, ItemTarget(), "150")}

	q := Resolve(item, offers, now)

	if !q.HasOffer || q.IsUpcoming {
		t.Fatalf("expected active offer, got %+v", q)
	}
	if !q.DisplayPrice.Equal(dec("150")) {
		t.Errorf("expected display price 150, got %s", q.DisplayPrice)
	}
	if !q.StrikethroughPrice.Equal(dec("200")) {
		t.Errorf("expected strikethrough 200, got %s", q.StrikethroughPrice)
	}
	if q.DiscountPercent != 25 {
		t.Errorf("expected 25%% discount, got %d", q.DiscountPercent)
	}
}

func TestResolve_VariantOfferUsesVariantOriginal(t *testing.T) {
	item := testItem("100",
		Variant{Name: "Half", Price: dec("100")},
		Variant{Name: "Full", Price: dec("180")},
	)
	offers := []Offer{activeOffer(item, VariantTarget("Full"), "144")}

	q := Resolve(item, offers, now)

	if !q.StrikethroughPrice.Equal(dec("180")) {
		t.Errorf("expected strikethrough 180, got %s", q.StrikethroughPrice)
	}
	if q.DiscountPercent != 20 {
		t.Errorf("expected 20%% discount, got %d", q.DiscountPercent)
	}
}

func TestResolve_UnmatchedVariantFallsBackToBasePrice(t *testing.T) {
	item := testItem("100", Variant{Name: "Half", Price: dec("60")})
	offers := []Offer{activeOffer(item, VariantTarget("Jumbo"), "80")}

	q := Resolve(item, offers, now)

	if !q.StrikethroughPrice.Equal(dec("100")) {
		t.Errorf("expected base-price fallback 100, got %s", q.StrikethroughPrice)
	}
	if q.DiscountPercent != 20 {
		t.Errorf("expected 20%% discount, got %d", q.DiscountPercent)
	}
}

func TestResolve_MultiVariantOfferUsesMinimums(t *testing.T) {
	item := testItem("100",
		Variant{Name: "Half", Price: dec("100")},
		Variant{Name: "Full", Price: dec("180")},
	)
	offers := []Offer{
		activeOffer(item, VariantTarget("Half"), "80"),
		activeOffer(item, VariantTarget("Full"), "150"),
	}

	q := Resolve(item, offers, now)

	if !q.IsMultiVariantOffer {
		t.Fatal("expected multi-variant offer")
	}
	if !q.DisplayPrice.Equal(dec("80")) {
		t.Errorf("expected min offer price 80, got %s", q.DisplayPrice)
	}
	if !q.StrikethroughPrice.Equal(dec("100")) {
		t.Errorf("expected min original 100, got %s", q.StrikethroughPrice)
	}
	if q.DiscountPercent != 20 {
		t.Errorf("expected 20%% discount, got %d", q.DiscountPercent)
	}
}

func TestResolve_UpcomingTakesPrecedenceOverActive(t *testing.T) {
	item := testItem("200")
	offers := []Offer{
		activeOffer(item, ItemTarget(), "150"),
		upcomingOffer(item, ItemTarget(), "120"),
	}

	q := Resolve(item, offers, now)

	if !q.IsUpcoming {
		t.Fatal("expected the upcoming offer to win")
	}
	if !q.DisplayPrice.Equal(dec("120")) {
		t.Errorf("expected upcoming price 120, got %s", q.DisplayPrice)
	}
	if !q.StrikethroughPrice.Equal(dec("200")) {
		t.Errorf("expected strikethrough 200, got %s", q.StrikethroughPrice)
	}
}

func TestResolve_ExpiredOfferIgnored(t *testing.T) {
	item := testItem("200")
	o := activeOffer(item, ItemTarget(), "150")
	o.StartsAt = now.Add(-3 * time.Hour)
	o.EndsAt = now.Add(-time.Hour)

	q := Resolve(item, []Offer{o}, now)

	if q.HasOffer {
		t.Error("expected expired offer to be ignored")
	}
	if !q.DisplayPrice.Equal(dec("200")) {
		t.Errorf("expected base price 200, got %s", q.DisplayPrice)
	}
}

func TestResolve_OtherItemsOffersIgnored(t *testing.T) {
	item := testItem("200")
	other := testItem("90")
	offers := []Offer{activeOffer(other, ItemTarget(), "50")}

	q := Resolve(item, offers, now)

	if q.HasOffer {
		t.Error("expected another item's offer to be ignored")
	}
}

func TestResolve_ZeroOriginalClampsDiscount(t *testing.T) {
	item := testItem("0")
	offers := []Offer{activeOffer(item, ItemTarget(), "50")}

	q := Resolve(item, offers, now)

	if q.DiscountPercent != 0 {
		t.Errorf("expected 0%% discount on zero original, got %d", q.DiscountPercent)
	}
}

func TestResolve_NegativeDiscountClampsToZero(t *testing.T) {
	item := testItem("100")
	offers := []Offer{activeOffer(item, ItemTarget(), "120")}

	q := Resolve(item, offers, now)

	if q.DiscountPercent != 0 {
		t.Errorf("expected clamp to 0%%, got %d", q.DiscountPercent)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	item := testItem("200")
	offers := []Offer{activeOffer(item, ItemTarget(), "150")}

	first := Resolve(item, offers, now)
	second := Resolve(item, offers, now)

	if !first.DisplayPrice.Equal(second.DisplayPrice) ||
		first.DiscountPercent != second.DiscountPercent ||
		first.HasOffer != second.HasOffer {
		t.Errorf("expected identical quotes, got %+v and %+v", first, second)
	}
}

func TestChargeablePrice_ActiveOfferWins(t *testing.T) {
	item := testItem("200")
	offers := []Offer{activeOffer(item, ItemTarget(), "150")}

	got := ChargeablePrice(item, offers, "", now)

	if !got.Equal(dec("150")) {
		t.Errorf("expected 150, got %s", got)
	}
}

func TestChargeablePrice_UpcomingOfferNotCharged(t *testing.T) {
	item := testItem("200")
	offers := []Offer{upcomingOffer(item, ItemTarget(), "120")}

	got := ChargeablePrice(item, offers, "", now)

	if !got.Equal(dec("200")) {
		t.Errorf("expected base price 200, got %s", got)
	}
}

func TestChargeablePrice_VariantSelection(t *testing.T) {
	item := testItem("100",
		Variant{Name: "Half", Price: dec("100")},
		Variant{Name: "Full", Price: dec("180")},
	)
	offers := []Offer{activeOffer(item, VariantTarget("Full"), "150")}

	if got := ChargeablePrice(item, offers, "Full", now); !got.Equal(dec("150")) {
		t.Errorf("expected offer price 150 for Full, got %s", got)
	}
	if got := ChargeablePrice(item, offers, "Half", now); !got.Equal(dec("100")) {
		t.Errorf("expected plain variant price 100 for Half, got %s", got)
	}
}

func TestChargeablePrice_ItemOfferDoesNotApplyToVariantSelection(t *testing.T) {
	item := testItem("100", Variant{Name: "Full", Price: dec("180")})
	offers := []Offer{activeOffer(item, ItemTarget(), "80")}

	got := ChargeablePrice(item, offers, "Full", now)

	if !got.Equal(dec("180")) {
		t.Errorf("expected variant price 180, got %s", got)
	}
}
