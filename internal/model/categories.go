package model

// Reserved categories. The owner-withdrawal expense category triggers the
// mirror rule (a company expense in it produces a personal income record),
// and the company-income category tags the mirrored record. Neither can be
// removed from the category config.
const (
	ReservedOwnerWithdrawalCategory = "Retiros del dueño / Finanzas personales"
	ReservedCompanyIncomeCategory   = "Ingreso desde Ddreams 3D"
)

// ExpenseCategoryLists groups expense categories by expense type.
type ExpenseCategoryLists struct {
	Production []string `json:"production"`
	Fixed      []string `json:"fixed"`
	Variable   []string `json:"variable"`
}

// CategoriesConfig is the mutable category list the editors draw from.
type CategoriesConfig struct {
	Income  []string             `json:"income"`
	Expense ExpenseCategoryLists `json:"expense"`
}

// DefaultCategories returns the stock category lists.
func DefaultCategories() CategoriesConfig {
	return CategoriesConfig{
		Income: []string{
			"Servicio de Impresión 3D",
			"Servicio de Diseño 3D",
			"Venta de Productos",
			"Consultoría",
			"Préstamos",
			"Otros Ingresos",
			ReservedCompanyIncomeCategory,
		},
		Expense: ExpenseCategoryLists{
			Production: []string{
				"Materiales (Filamento, Resina)",
				"Insumos de Post-procesado",
				"Mantenimiento de Equipos",
				"Logística y Envíos (Directo)",
				"Empaquetado",
			},
			Fixed: []string{
				"Alquiler de Local",
				"Internet / Teléfono",
				"Luz / Agua",
				"Software / Suscripciones",
				"Sueldos Fijos",
				"Préstamos / Deudas",
				ReservedOwnerWithdrawalCategory,
			},
			Variable: []string{
				"Publicidad (Ads)",
				"Marketing / Branding",
				"Comisiones de Ventas",
				"Transporte / Movilidad",
				"Eventos / Ferias",
				"Otros Gastos Variables",
			},
		},
	}
}

// EnsureReserved re-adds the reserved categories if an edit dropped them.
func (c CategoriesConfig) EnsureReserved() CategoriesConfig {
	c.Income = appendMissing(c.Income, ReservedCompanyIncomeCategory)
	c.Expense.Fixed = appendMissing(c.Expense.Fixed, ReservedOwnerWithdrawalCategory)
	return c
}

func appendMissing(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
