package app

import (
	"github.com/smakfood/smakbot/internal/workflow"
)

var countrySchema = workflow.Schema{
	Labels: map[string]string{
		"Title ua:": "title_ua",
		"Title en:": "title_en",
	},
	Required: []string{"title_ua", "title_en"},
}

var kitchenSchema = workflow.Schema{
	Labels: map[string]string{
		"Title ua:": "title_ua",
		"Title en:": "title_en",
		"Country:":  "country_id",
	},
	Required: []string{"title_ua", "title_en", "country_id"},
}

var companyAddSchema = workflow.Schema{
	Labels: map[string]string{
		"Title:":          "title",
		"Description ua:": "description_ua",
		"Description en:": "description_en",
		"Phone:":          "phone",
		"Kitchen:":        "kitchen_id",
	},
	Required: []string{"title", "kitchen_id"},
}

var companyTextSchema = workflow.Schema{
	Labels: map[string]string{
		"Title:":          "title",
		"Description ua:": "description_ua",
		"Description en:": "description_en",
		"Phone:":          "phone",
	},
}

var companyRelationSchema = workflow.Schema{
	Labels: map[string]string{
		"Kitchen:": "kitchen_id",
	},
}

var productSchema = workflow.Schema{
	Labels: map[string]string{
		"Title ua:":       "title_ua",
		"Title en:":       "title_en",
		"Description ua:": "description_ua",
		"Description en:": "description_en",
		"Price:":          "price",
		"Company:":        "company_id",
	},
	Required: []string{"title_ua", "title_en", "price", "company_id"},
}

func (a *App) registerWorkflows() {
	a.engine.Register(&workflow.Definition{
		Content:    ContentAdminCountry,
		Capability: workflow.CapabilityFor(a.svc.countries),
		AddSchema:  countrySchema,
		EditSchema: countrySchema,
	})
	a.engine.Register(&workflow.Definition{
		Content:    ContentAdminKitchen,
		Capability: workflow.CapabilityFor(a.svc.kitchens),
		AddSchema:  kitchenSchema,
		EditSchema: kitchenSchema,
	})
	a.engine.Register(&workflow.Definition{
		Content:    ContentAdminCompany,
		Capability: workflow.CapabilityFor(a.svc.companies),
		AddSchema:  companyAddSchema,
		EditSchema: companyTextSchema,
		EditMenu: &workflow.EditMenu{
			TextSchema:     companyTextSchema,
			RelationSchema: companyRelationSchema,
			AllowPhoto:     true,
		},
	})
	a.engine.Register(&workflow.Definition{
		Content:    ContentAdminProduct,
		Capability: workflow.CapabilityFor(a.svc.products),
		AddSchema:  productSchema,
		EditSchema: productSchema,
	})
}
