package handlers

import (
	"testing"
	"time"

	"estore/internal/models"
)

func TestFilterSectionFieldsDropsForeignKeys(t *testing.T) {
	update, ok := filterSectionFields("general", map[string]interface{}{
		"siteName":     "My Shop",
		"smtpPassword": "sneaky",
		"currency":     "USD",
	})
	if !ok {
		t.Fatal("general is a valid section")
	}
	if _, exists := update["smtpPassword"]; exists {
		t.Fatal("fields from other sections must be dropped")
	}
	if update["siteName"] != "My Shop" || update["currency"] != "USD" {
		t.Fatalf("expected own fields kept, got %v", update)
	}
}

func TestFilterSectionFieldsUnknownSection(t *testing.T) {
	if _, ok := filterSectionFields("plugins", map[string]interface{}{"x": 1}); ok {
		t.Fatal("unknown section must be rejected")
	}
}

func TestEverySettingsSectionIsNonEmpty(t *testing.T) {
	expected := []string{"general", "email", "payment", "security", "notifications", "features", "seo", "social"}
	for _, section := range expected {
		fields, ok := settingSections[section]
		if !ok {
			t.Fatalf("missing section %s", section)
		}
		if len(fields) == 0 {
			t.Fatalf("section %s has no fields", section)
		}
	}
	if len(settingSections) != len(expected) {
		t.Fatalf("expected %d sections, got %d", len(expected), len(settingSections))
	}
}

func TestPublicSettingsViewHidesSecrets(t *testing.T) {
	settings := models.DefaultSettings(time.Now())
	settings.SMTPPassword = "smtp-secret"
	settings.StripeSecretKey = "sk_live_secret"
	settings.PayPalClientSecret = "pp-secret"
	settings.BankAccountNumber = "123456789"

	view := publicSettingsView(settings)

	for _, key := range []string{"smtpHost", "smtpPassword", "smtpUsername", "stripeSecretKey", "stripePublishableKey", "paypalClientSecret"} {
		if _, exists := view[key]; exists {
			t.Fatalf("public view must not expose %s", key)
		}
	}

	// EFT customers need the bank details to pay.
	if view["bankAccountNumber"] != "123456789" {
		t.Fatal("public view must keep bank details")
	}
	if view["siteName"] != settings.SiteName {
		t.Fatal("public view must keep general fields")
	}
}
