package plugins

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/haskoe/beancount-dansk/ast"
)

// Config holds the static tables the pass depends on: the account mapping,
// credit-account aliases, the year-keyed mileage rate table, the filename
// classification table and invoice rendering settings. It is injected into
// New as an immutable value so tests can supply alternate tables.
type Config struct {
	Accounts       Accounts
	Aliases        map[string]ast.Account
	Currency       string
	MileageRates   map[int]decimal.Decimal
	Classification []FileClass
	Invoice        InvoiceSettings
}

// Accounts maps the fixed roles in synthesized transactions to account names.
type Accounts struct {
	Bank           ast.Account
	VatPurchase    ast.Account
	VatSale        ast.Account
	Receivables    ast.Account
	MileageExpense ast.Account
}

// FileClass maps a file path substring to a VAT variant. The table is
// queried by substring containment, first match wins.
type FileClass struct {
	Match   string
	Variant VatVariant
}

// InvoiceSettings configures sales-invoice document rendering.
type InvoiceSettings struct {
	TemplateDir string
	OutputDir   string
	CompanyName string
}

// DefaultConfig returns the configuration matching the stock Danish chart of
// accounts this toolkit assumes.
func DefaultConfig() *Config {
	return &Config{
		Accounts: Accounts{
			Bank:           "Assets:Bank:Erhverv",
			VatPurchase:    "Assets:Moms:Koeb",
			VatSale:        "Liabilities:Moms:Salgs",
			Receivables:    "Assets:Debitorer",
			MileageExpense: "Expenses:Personnel:Mileage",
		},
		Aliases: map[string]ast.Account{
			"creditors":  "Liabilities:Kreditorer",
			"kreditorer": "Liabilities:Kreditorer",
		},
		Currency: "DKK",
		MileageRates: map[int]decimal.Decimal{
			2025: decimal.RequireFromString("3.80"),
			2026: decimal.RequireFromString("3.82"),
		},
		// Ordered so the more specific u-moms tag wins before the bare
		// "moms" fragments of the other entries could ever match.
		Classification: []FileClass{
			{Match: "u-moms", Variant: VatReverseCharge},
			{Match: "momsfri", Variant: VatZeroRated},
			{Match: "restaurant", Variant: VatRestaurant},
			{Match: "standard", Variant: VatStandard},
		},
		Invoice: InvoiceSettings{
			TemplateDir: "templates",
			OutputDir:   "bilag/salg",
			CompanyName: "Min Virksomhed ApS",
		},
	}
}

// ResolveAccount rewrites a credit-account value literally equal to a short
// alias token to its full hierarchical path. Applied uniformly across all
// rewriters before posting synthesis.
func (c *Config) ResolveAccount(name string) ast.Account {
	if full, ok := c.Aliases[name]; ok {
		return full
	}
	return ast.Account(name)
}

// RateFor looks up the per-kilometre mileage rate for a calendar year.
func (c *Config) RateFor(year int) (decimal.Decimal, bool) {
	rate, ok := c.MileageRates[year]
	return rate, ok
}

// ClassifyFilename maps a file path to a VAT variant by substring
// containment, first match wins.
func (c *Config) ClassifyFilename(filename string) (VatVariant, bool) {
	for _, fc := range c.Classification {
		if fc.Match != "" && strings.Contains(filename, fc.Match) {
			return fc.Variant, true
		}
	}
	return 0, false
}

// fileConfig is the YAML form of Config. All monetary values are strings so
// they parse into exact decimals.
type fileConfig struct {
	Accounts struct {
		Bank           string `yaml:"bank"`
		VatPurchase    string `yaml:"vat_purchase"`
		VatSale        string `yaml:"vat_sale"`
		Receivables    string `yaml:"receivables"`
		MileageExpense string `yaml:"mileage_expense"`
	} `yaml:"accounts"`
	Aliases      map[string]string `yaml:"aliases"`
	Currency     string            `yaml:"currency"`
	MileageRates map[int]string    `yaml:"mileage_rates"`
	Classify     []struct {
		Match   string `yaml:"match"`
		Variant string `yaml:"variant"`
	} `yaml:"classification"`
	Invoice struct {
		TemplateDir string `yaml:"template_dir"`
		OutputDir   string `yaml:"output_dir"`
		CompanyName string `yaml:"company_name"`
	} `yaml:"invoice"`
}

// LoadConfig reads a YAML configuration file and merges it over the
// defaults. Absent fields keep their default values; present ones replace
// them wholesale (rates and classification tables are not merged entry-wise).
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes and merges them over the
// defaults.
func ParseConfig(data []byte) (*Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg := DefaultConfig()

	if err := overrideAccount(&cfg.Accounts.Bank, fc.Accounts.Bank); err != nil {
		return nil, err
	}
	if err := overrideAccount(&cfg.Accounts.VatPurchase, fc.Accounts.VatPurchase); err != nil {
		return nil, err
	}
	if err := overrideAccount(&cfg.Accounts.VatSale, fc.Accounts.VatSale); err != nil {
		return nil, err
	}
	if err := overrideAccount(&cfg.Accounts.Receivables, fc.Accounts.Receivables); err != nil {
		return nil, err
	}
	if err := overrideAccount(&cfg.Accounts.MileageExpense, fc.Accounts.MileageExpense); err != nil {
		return nil, err
	}

	if len(fc.Aliases) > 0 {
		aliases := make(map[string]ast.Account, len(fc.Aliases))
		for alias, name := range fc.Aliases {
			account, err := ast.NewAccount(name)
			if err != nil {
				return nil, fmt.Errorf("invalid alias target for %q: %w", alias, err)
			}
			aliases[alias] = account
		}
		cfg.Aliases = aliases
	}

	if fc.Currency != "" {
		cfg.Currency = fc.Currency
	}

	if len(fc.MileageRates) > 0 {
		rates := make(map[int]decimal.Decimal, len(fc.MileageRates))
		for year, value := range fc.MileageRates {
			rate, err := decimal.NewFromString(value)
			if err != nil {
				return nil, fmt.Errorf("invalid mileage rate for year %d: %w", year, err)
			}
			rates[year] = rate
		}
		cfg.MileageRates = rates
	}

	if len(fc.Classify) > 0 {
		classes := make([]FileClass, 0, len(fc.Classify))
		for _, entry := range fc.Classify {
			variant, ok := ParseVatVariant(entry.Variant)
			if !ok {
				return nil, fmt.Errorf("unknown VAT variant %q in classification", entry.Variant)
			}
			classes = append(classes, FileClass{Match: entry.Match, Variant: variant})
		}
		cfg.Classification = classes
	}

	if fc.Invoice.TemplateDir != "" {
		cfg.Invoice.TemplateDir = fc.Invoice.TemplateDir
	}
	if fc.Invoice.OutputDir != "" {
		cfg.Invoice.OutputDir = fc.Invoice.OutputDir
	}
	if fc.Invoice.CompanyName != "" {
		cfg.Invoice.CompanyName = fc.Invoice.CompanyName
	}

	return cfg, nil
}

func overrideAccount(dst *ast.Account, value string) error {
	if value == "" {
		return nil
	}
	account, err := ast.NewAccount(value)
	if err != nil {
		return fmt.Errorf("invalid account %q in config: %w", value, err)
	}
	*dst = account
	return nil
}
