package integration

import (
	"net/http"
	"testing"
)

func TestSummaryFlow_NetWorthAcrossAccountTypes(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "networth@test.com", "password123")

	app.createAccount(t, token, `{"name":"Checking","type":"basic","balance":5000}`)
	app.createAccount(t, token, `{"name":"Lent to Sam","type":"lending","balance":2000}`)
	app.createAccount(t, token, `{"name":"Owed to Alex","type":"borrowing","balance":800}`)
	app.createAccount(t, token, `{"name":"Car Loan","type":"loan","loan_amount":2400,"total_periods":24}`)

	// Installment debt on a credit card counts as a liability
	card := app.createAccount(t, token, `{"name":"Card","type":"credit","credit_limit":5000}`)
	rec := app.request("POST", "/api/v1/accounts/"+card["id"].(string)+"/installments",
		`{"total_amount":800,"total_periods":8}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plan failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/summary/net-worth", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	summary := parseJSON(t, rec)["summary"].(map[string]interface{})

	// Assets: 5000 checking + 2000 lent. Liabilities: 800 card debt + 2400 loan + 800 borrowed.
	assertAmount(t, summary["total_assets"], "7000", "assets")
	assertAmount(t, summary["total_liabilities"], "4000", "liabilities")
	assertAmount(t, summary["net_assets"], "3000", "net assets")
	assertAmount(t, summary["total_lending"], "2000", "lending")
	assertAmount(t, summary["total_borrowing"], "800", "borrowing")
}

func TestSummaryFlow_HiddenAccountsExcluded(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "hidden@test.com", "password123")

	app.createAccount(t, token, `{"name":"Checking","type":"basic","balance":100}`)
	stash := app.createAccount(t, token, `{"name":"Stash","type":"basic","balance":999}`)
	stashID := stash["id"].(string)

	rec := app.request("POST", "/api/v1/accounts/"+stashID+"/hide", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("hide failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/summary/net-worth", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary failed: %d %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, parseJSON(t, rec)["summary"].(map[string]interface{})["total_assets"], "100", "assets")

	// Unhiding brings the balance back
	rec = app.request("POST", "/api/v1/accounts/"+stashID+"/unhide", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("unhide failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/summary/net-worth", "", token)
	assertAmount(t, parseJSON(t, rec)["summary"].(map[string]interface{})["total_assets"], "1099", "assets after unhide")
}
