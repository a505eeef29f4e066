package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestInstallmentFlow_PlanLifecycle(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "plan@test.com", "password123")

	ledgerID := app.createLedger(t, token, "Personal")
	card := app.createAccount(t, token, `{"name":"Card","type":"credit","credit_limit":5000}`)
	cardID := card["id"].(string)

	// Attach a 12-period plan with a 5% fee split across periods
	rec := app.request("POST", "/api/v1/accounts/"+cardID+"/installments",
		`{"total_amount":1200,"total_periods":12,"fee_rate":0.05}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan failed: %d %s", rec.Code, rec.Body.String())
	}
	plan := parseJSON(t, rec)["plan"].(map[string]interface{})
	planID := plan["id"].(string)
	if strategy := plan["fee_strategy"].(string); strategy != "evenly_split" {
		t.Errorf("expected default fee strategy evenly_split, got %v", strategy)
	}

	// The plan's principal is booked as debt on the card
	assertAmount(t, app.getAccount(t, token, cardID)["current_debt"], "1200", "debt after plan")

	// One repayment: 100 principal plus 5 fee share, debt drops by the principal
	body := fmt.Sprintf(`{"ledger_id":%q}`, ledgerID)
	rec = app.request("POST", "/api/v1/installments/"+planID+"/repay", body, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("repay plan failed: %d %s", rec.Code, rec.Body.String())
	}
	repaid := parseJSON(t, rec)["plan"].(map[string]interface{})
	if periods := repaid["paid_periods"].(float64); periods != 1 {
		t.Errorf("expected 1 paid period, got %v", periods)
	}
	assertAmount(t, app.getAccount(t, token, cardID)["current_debt"], "1100", "debt after repay")

	rec = app.request("GET", "/api/v1/ledgers/"+ledgerID+"/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list transactions failed: %d %s", rec.Code, rec.Body.String())
	}
	page := parseJSON(t, rec)
	if total := page["total_items"].(float64); total != 1 {
		t.Fatalf("expected 1 repayment expense, got %v", total)
	}
	expense := page["data"].([]interface{})[0].(map[string]interface{})
	assertAmount(t, expense["amount"], "105", "repayment expense")

	// Deleting the plan lifts its outstanding debt from the card
	rec = app.request("DELETE", "/api/v1/installments/"+planID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete plan failed: %d %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.getAccount(t, token, cardID)["current_debt"], "0", "debt after delete")

	rec = app.request("GET", "/api/v1/installments/"+planID, "", token)
	assertErrorCode(t, rec, http.StatusNotFound, "PLAN_NOT_FOUND")
}

func TestInstallmentFlow_LastPeriodSettlesPlan(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "plandone@test.com", "password123")

	ledgerID := app.createLedger(t, token, "Personal")
	card := app.createAccount(t, token, `{"name":"Card","type":"credit","credit_limit":5000}`)
	cardID := card["id"].(string)

	// 100 over 3 periods: 33.33 + 33.33 + a 33.34 remainder
	rec := app.request("POST", "/api/v1/accounts/"+cardID+"/installments",
		`{"total_amount":100,"total_periods":3}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan failed: %d %s", rec.Code, rec.Body.String())
	}
	planID := parseJSON(t, rec)["plan"].(map[string]interface{})["id"].(string)

	body := fmt.Sprintf(`{"ledger_id":%q}`, ledgerID)
	for i := 0; i < 3; i++ {
		rec = app.request("POST", "/api/v1/installments/"+planID+"/repay", body, token)
		if rec.Code != http.StatusOK {
			t.Fatalf("repay %d failed: %d %s", i+1, rec.Code, rec.Body.String())
		}
	}
	assertAmount(t, app.getAccount(t, token, cardID)["current_debt"], "0", "debt after settlement")

	rec = app.request("POST", "/api/v1/installments/"+planID+"/repay", body, token)
	assertErrorCode(t, rec, http.StatusBadRequest, "PLAN_SETTLED")
}

func TestInstallmentFlow_RequiresCreditAccount(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "plantype@test.com", "password123")

	account := app.createAccount(t, token, `{"name":"Checking","type":"basic","balance":100}`)

	rec := app.request("POST", "/api/v1/accounts/"+account["id"].(string)+"/installments",
		`{"total_amount":1200,"total_periods":12}`, token)
	assertErrorCode(t, rec, http.StatusBadRequest, "NOT_CREDIT_ACCOUNT")
}
