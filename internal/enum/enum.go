package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	OrderTypeDelivery = "DELIVERY"
	OrderTypePickup   = "PICKUP"
	OrderTypeDineIn   = "DINE_IN"
)

// ── Roles ──

const (
	RoleSuperadmin = "SUPERADMIN"
	RoleOwner      = "OWNER"
	RoleStaff      = "STAFF"
)

// ── Per-order surcharge application ──

const (
	ChargeTypePerItem = "PER_ITEM"
	ChargeTypeFlatFee = "FLAT_FEE"
)

// ── Explore feed entry kinds ──

const (
	ExploreKindReel  = "REEL"
	ExploreKindOffer = "OFFER"
)
