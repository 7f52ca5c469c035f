package enum

type TechCategory string

const (
	TechCategoryCRM            TechCategory = "crm"
	TechCategoryEcommerce      TechCategory = "ecommerce"
	TechCategoryPayments       TechCategory = "payments"
	TechCategoryEmailMarketing TechCategory = "email_marketing"
	TechCategoryAnalytics      TechCategory = "analytics"
	TechCategoryCDPTesting     TechCategory = "cdp_testing"
	TechCategoryCMSHosting     TechCategory = "cms_hosting"
	TechCategoryOther          TechCategory = "other"
)

func (t TechCategory) String() string {
	return string(t)
}

func AllTechCategories() []TechCategory {
	return []TechCategory{
		TechCategoryCRM,
		TechCategoryEcommerce,
		TechCategoryPayments,
		TechCategoryEmailMarketing,
		TechCategoryAnalytics,
		TechCategoryCDPTesting,
		TechCategoryCMSHosting,
		TechCategoryOther,
	}
}

func DecodeTechCategory(s string) TechCategory {
	switch s {
	case "crm":
		return TechCategoryCRM
	case "ecommerce":
		return TechCategoryEcommerce
	case "payments":
		return TechCategoryPayments
	case "email_marketing":
		return TechCategoryEmailMarketing
	case "analytics":
		return TechCategoryAnalytics
	case "cdp_testing":
		return TechCategoryCDPTesting
	case "cms_hosting":
		return TechCategoryCMSHosting
	default:
		return TechCategoryOther
	}
}
