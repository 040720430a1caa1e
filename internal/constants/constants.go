package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列与任务常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"

	TaskProductLowStock = "product:low_stock"
)

// 会话上下文键
const (
	ContextKeySessionUser = "session_user"
	ContextKeyUserID      = "user_id"
	ContextKeyRequestID   = "request_id"
)

// 权限相关常量
const (
	AuthzActionCall         = "call"
	AuthzRoleCatalogManager = "catalog_manager"
	AuthzUserSubjectPrefix  = "user:"
	AuthzRoleSubjectPrefix  = "role:"
)

// RPC 过程名
const (
	ProcHealthCheck       = "healthCheck"
	ProcAuthGetSession    = "auth.getSession"
	ProcAuthLogin         = "auth.login"
	ProcAuthRegister      = "auth.register"
	ProcAuthLogout        = "auth.logout"
	ProcProductList       = "product.list"
	ProcProductBySlug     = "product.bySlug"
	ProcProductCreate     = "product.create"
	ProcProductUpdate     = "product.update"
	ProcProductCategories = "product.categories"
	ProcCategoryUpsert    = "category.upsert"
	ProcAdminProductList  = "admin.product.list"
	ProcCartGetCart       = "cart.getCart"
	ProcCartAddToCart     = "cart.addToCart"
	ProcCartUpdateItem    = "cart.updateItem"
	ProcCartRemoveItem    = "cart.removeItem"
)
