package catalog

import (
	"github.com/leadscout/techscan/internal/enum"
	"github.com/leadscout/techscan/internal/models"
)

// defaultSignatures is the built-in registry. Enterprise weights reflect how
// much a detected tool says about the prospect's budget; agencies tune the
// per-category multipliers in config, not these.
func defaultSignatures() []models.TechnologySignature {
	return []models.TechnologySignature{
		// CRM / sales tooling
		{
			Name:     "Salesforce",
			Category: enum.TechCategoryCRM,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: ".force.com"},
				{Kind: enum.RuleBodyContains, Value: "pardot.com"},
				{Kind: enum.RuleBodyContains, Value: "salesforce-communities"},
			},
			EnterpriseWeight: 9,
			TalkingPoint:     "teams running Salesforce usually have pipeline data nobody is acting on",
		},
		{
			Name:     "HubSpot",
			Category: enum.TechCategoryCRM,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "js.hs-scripts.com"},
				{Kind: enum.RuleCookieName, Value: "hubspotutk"},
				{Kind: enum.RuleBodyContains, Value: "js.hs-analytics.net"},
			},
			EnterpriseWeight: 8,
			TalkingPoint:     "most HubSpot accounts only use a fraction of the workflows they pay for",
		},
		{
			Name:     "Marketo",
			Category: enum.TechCategoryCRM,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "munchkin.js"},
				{Kind: enum.RuleCookieName, Value: "_mkto_trk"},
			},
			EnterpriseWeight: 8,
			TalkingPoint:     "Marketo programs tend to accumulate scoring rules that quietly fight each other",
		},
		{
			Name:     "Intercom",
			Category: enum.TechCategoryCRM,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "widget.intercom.io"},
				{Kind: enum.RuleBodyContains, Value: "intercomSettings"},
			},
			EnterpriseWeight: 7,
			TalkingPoint:     "Intercom conversations are a goldmine most teams never route back into sales",
		},
		{
			Name:     "Drift",
			Category: enum.TechCategoryCRM,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "js.driftt.com"},
				{Kind: enum.RuleBodyContains, Value: "drift.load"},
			},
			EnterpriseWeight: 6,
			TalkingPoint:     "chat tools like Drift only convert when the routing behind them is tight",
		},

		// Ecommerce platforms
		{
			Name:     "Shopify",
			Category: enum.TechCategoryEcommerce,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "cdn.shopify.com"},
				{Kind: enum.RuleHeaderPresent, Value: "x-shopify-stage"},
				{Kind: enum.RuleCookieName, Value: "_shopify_s"},
			},
			EnterpriseWeight: 6,
			TalkingPoint:     "Shopify stores usually leave checkout and post-purchase flows on defaults",
		},
		{
			Name:     "WooCommerce",
			Category: enum.TechCategoryEcommerce,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleMetaGenerator, Value: "WooCommerce"},
				{Kind: enum.RuleCookieName, Value: "woocommerce_cart_hash"},
				{Kind: enum.RuleBodyContains, Value: "wp-content/plugins/woocommerce"},
			},
			EnterpriseWeight: 5,
			TalkingPoint:     "WooCommerce shops often lose sales to slow pages and abandoned-cart gaps",
		},
		{
			Name:     "BigCommerce",
			Category: enum.TechCategoryEcommerce,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "cdn11.bigcommerce.com"},
				{Kind: enum.RuleBodyContains, Value: "bigcommerce.com"},
			},
			EnterpriseWeight: 6,
			TalkingPoint:     "BigCommerce merchants tend to under-use the built-in conversion tooling",
		},

		// Payments
		{
			Name:     "Stripe",
			Category: enum.TechCategoryPayments,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "js.stripe.com"},
				{Kind: enum.RuleBodyContains, Value: "Stripe("},
			},
			EnterpriseWeight: 7,
			TalkingPoint:     "Stripe data can drive revenue reporting most teams still do by hand",
		},
		{
			Name:     "PayPal",
			Category: enum.TechCategoryPayments,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "paypal.com/sdk/js"},
				{Kind: enum.RuleBodyContains, Value: "paypalobjects.com"},
			},
			EnterpriseWeight: 5,
			TalkingPoint:     "PayPal-only checkouts leave card-preferring buyers behind",
		},

		// Email marketing
		{
			Name:     "Klaviyo",
			Category: enum.TechCategoryEmailMarketing,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "static.klaviyo.com"},
				{Kind: enum.RuleCookieName, Value: "__kla_id"},
			},
			EnterpriseWeight: 6,
			TalkingPoint:     "Klaviyo flows usually stop at welcome and abandoned cart; the rest is untapped",
		},
		{
			Name:     "Mailchimp",
			Category: enum.TechCategoryEmailMarketing,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "chimpstatic.com"},
				{Kind: enum.RuleBodyContains, Value: "list-manage.com"},
			},
			EnterpriseWeight: 5,
			TalkingPoint:     "Mailchimp lists grow stale fast without a re-engagement rhythm",
		},
		{
			Name:     "SendGrid",
			Category: enum.TechCategoryEmailMarketing,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleBodyContains, Value: "sendgrid.net"},
			},
			EnterpriseWeight: 5,
			TalkingPoint:     "transactional email through SendGrid rarely gets the deliverability attention it needs",
		},

		// Analytics
		{
			Name:     "Google Analytics",
			Category: enum.TechCategoryAnalytics,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "googletagmanager.com/gtag/js"},
				{Kind: enum.RuleBodyRegex, Value: `G-[A-Z0-9]{8,12}`},
				{Kind: enum.RuleCookieName, Value: "_ga"},
			},
			EnterpriseWeight: 3,
			TalkingPoint:     "GA4 is installed everywhere and read almost nowhere",
		},
		{
			Name:     "Hotjar",
			Category: enum.TechCategoryAnalytics,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "static.hotjar.com"},
				{Kind: enum.RuleBodyContains, Value: "hjSiteSettings"},
			},
			EnterpriseWeight: 4,
			TalkingPoint:     "Hotjar recordings pile up; the insight is in watching the right ones",
		},

		// CDP / testing
		{
			Name:     "Segment",
			Category: enum.TechCategoryCDPTesting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "cdn.segment.com"},
				{Kind: enum.RuleBodyContains, Value: "analytics.load("},
			},
			EnterpriseWeight: 7,
			TalkingPoint:     "a Segment install says the data plumbing exists; the activation usually doesn't",
		},
		{
			Name:     "Optimizely",
			Category: enum.TechCategoryCDPTesting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleScriptSrc, Value: "cdn.optimizely.com"},
			},
			EnterpriseWeight: 7,
			TalkingPoint:     "paying for Optimizely and running two tests a quarter is the norm, not the exception",
		},

		// CMS / hosting
		{
			Name:     "WordPress",
			Category: enum.TechCategoryCMSHosting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleMetaGenerator, Value: "WordPress"},
				{Kind: enum.RuleBodyContains, Value: "/wp-content/"},
				{Kind: enum.RuleBodyContains, Value: "/wp-includes/"},
			},
			EnterpriseWeight: 4,
			TalkingPoint:     "WordPress sites win or lose on speed and plugin hygiene",
		},
		{
			Name:     "Webflow",
			Category: enum.TechCategoryCMSHosting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleMetaGenerator, Value: "Webflow"},
				{Kind: enum.RuleBodyContains, Value: "assets.website-files.com"},
			},
			EnterpriseWeight: 4,
			TalkingPoint:     "Webflow sites look great and often measure nothing",
		},
		{
			Name:     "Wix",
			Category: enum.TechCategoryCMSHosting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleMetaGenerator, Value: "Wix.com"},
				{Kind: enum.RuleHeaderPresent, Value: "x-wix-request-id"},
				{Kind: enum.RuleBodyContains, Value: "static.parastorage.com"},
			},
			EnterpriseWeight: 3,
			TalkingPoint:     "businesses outgrow Wix the moment they need real funnels",
		},
		{
			Name:     "Squarespace",
			Category: enum.TechCategoryCMSHosting,
			Rules: []models.DetectionRule{
				{Kind: enum.RuleBodyContains, Value: "static1.squarespace.com"},
				{Kind: enum.RuleHeaderContains, Value: "server:Squarespace"},
			},
			EnterpriseWeight: 4,
			TalkingPoint:     "Squarespace handles the site; the growth stack around it is usually missing",
		},
	}
}
