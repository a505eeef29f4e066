package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_ExpenseIncomeTransfer(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "tx@test.com", "password123")

	ledgerID := app.createLedger(t, token, "Personal")
	checking := app.createAccount(t, token, `{"name":"Checking","type":"basic","balance":100}`)
	savings := app.createAccount(t, token, `{"name":"Savings","type":"basic","balance":50}`)
	checkingID := checking["id"].(string)
	savingsID := savings["id"].(string)

	// Category for the expense
	rec := app.request("POST", "/api/v1/ledgers/"+ledgerID+"/categories",
		`{"name":"Food","type":"expense"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create category failed: %d %s", rec.Code, rec.Body.String())
	}
	categoryID := parseJSON(t, rec)["category"].(map[string]interface{})["id"].(string)

	// Expense debits the source account
	body := fmt.Sprintf(`{"ledger_id":%q,"category_id":%q,"type":"expense","amount":30,"from_account_id":%q}`,
		ledgerID, categoryID, checkingID)
	rec = app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)
	assertAmount(t, app.getAccount(t, token, checkingID)["balance"], "70", "balance after expense")

	// Income credits the destination account
	body = fmt.Sprintf(`{"ledger_id":%q,"type":"income","amount":20,"to_account_id":%q}`, ledgerID, checkingID)
	rec = app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income failed: %d %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.getAccount(t, token, checkingID)["balance"], "90", "balance after income")

	// Transfer moves between accounts
	body = fmt.Sprintf(`{"ledger_id":%q,"type":"transfer","amount":40,"from_account_id":%q,"to_account_id":%q}`,
		ledgerID, checkingID, savingsID)
	rec = app.request("POST", "/api/v1/transactions", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create transfer failed: %d %s", rec.Code, rec.Body.String())
	}
	transferID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)
	assertAmount(t, app.getAccount(t, token, checkingID)["balance"], "50", "balance after transfer")
	assertAmount(t, app.getAccount(t, token, savingsID)["balance"], "90", "savings after transfer")

	// Ledger transaction listing sees all three
	rec = app.request("GET", "/api/v1/ledgers/"+ledgerID+"/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list transactions failed: %d %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total_items"].(float64); total != 3 {
		t.Errorf("expected 3 transactions, got %v", total)
	}

	// Editing the expense amount re-applies the balance effect
	rec = app.request("PUT", "/api/v1/transactions/"+expenseID, `{"amount":10}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("edit expense failed: %d %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.getAccount(t, token, checkingID)["balance"], "70", "balance after edit")

	// Deleting the transfer restores both balances
	rec = app.request("DELETE", "/api/v1/transactions/"+transferID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete transfer failed: %d %s", rec.Code, rec.Body.String())
	}
	assertAmount(t, app.getAccount(t, token, checkingID)["balance"], "110", "balance after delete")
	assertAmount(t, app.getAccount(t, token, savingsID)["balance"], "50", "savings after delete")
}

func TestTransactionFlow_ValidationErrors(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "txval@test.com", "password123")

	ledgerID := app.createLedger(t, token, "Personal")
	account := app.createAccount(t, token, `{"name":"Checking","type":"basic","balance":100}`)
	accountID := account["id"].(string)

	// Expense without a source account
	body := fmt.Sprintf(`{"ledger_id":%q,"type":"expense","amount":10}`, ledgerID)
	rec := app.request("POST", "/api/v1/transactions", body, token)
	assertErrorCode(t, rec, http.StatusBadRequest, "MISSING_ACCOUNT_REF")

	// Transfer to the same account
	body = fmt.Sprintf(`{"ledger_id":%q,"type":"transfer","amount":10,"from_account_id":%q,"to_account_id":%q}`,
		ledgerID, accountID, accountID)
	rec = app.request("POST", "/api/v1/transactions", body, token)
	assertErrorCode(t, rec, http.StatusBadRequest, "SAME_ACCOUNT_TRANSFER")
}

func TestTransactionFlow_CrossUserIsolation(t *testing.T) {
	app := setupApp(t)
	owner, _, _ := app.registerUser(t, "owner@test.com", "password123")
	intruder, _, _ := app.registerUser(t, "intruder@test.com", "password123")

	ledgerID := app.createLedger(t, owner, "Personal")
	account := app.createAccount(t, owner, `{"name":"Checking","type":"basic","balance":100}`)

	body := fmt.Sprintf(`{"ledger_id":%q,"type":"expense","amount":10,"from_account_id":%q}`,
		ledgerID, account["id"].(string))
	rec := app.request("POST", "/api/v1/transactions", body, owner)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	txID := parseJSON(t, rec)["transaction"].(map[string]interface{})["id"].(string)

	rec = app.request("GET", "/api/v1/ledgers/"+ledgerID+"/transactions", "", intruder)
	assertErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	rec = app.request("DELETE", "/api/v1/transactions/"+txID, "", intruder)
	assertErrorCode(t, rec, http.StatusForbidden, "FORBIDDEN")

	// The owner still sees the transaction untouched
	rec = app.request("GET", "/api/v1/transactions/"+txID, "", owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
