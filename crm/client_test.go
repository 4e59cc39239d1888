package crm_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-share-portal/crm"
	"github.com/jrsteele09/go-share-portal/internal/config"
	"github.com/jrsteele09/go-share-portal/internal/errors"
	"github.com/jrsteele09/go-share-portal/proxy"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method string
	path   string
	query  url.Values
	auth   string
	ctype  string
	body   []byte
}

func newCRM(t *testing.T, handler func(w http.ResponseWriter, s seen)) (*crm.Client, *[]seen) {
	t.Helper()
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s := seen{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			auth:   r.Header.Get("Authorization"),
			ctype:  r.Header.Get("Content-Type"),
			body:   body,
		}
		calls = append(calls, s)
		handler(w, s)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("ZOHO_API_DOMAIN", srv.URL)
	t.Setenv("ZOHO_CRM_DOMAIN", srv.URL)
	t.Setenv("ZOHO_INVENTORY_DOMAIN", srv.URL)
	t.Setenv("ZOHO_CRM_ORG_ID", "853227453")
	t.Setenv("ZOHO_INVENTORY_ORG_ID", "inv-org")
	return crm.NewClient(config.Zoho{}, srv.Client()), &calls
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

const rawProducts = `{"data":[
  {"id":"5001","Product_Name":"Acid Cleaner","Category":"Cleaners","Description":"","Product_Code":"AC-1","Unit_Price":12.5,"UoM":"Gallon","Quantity_per_SKU":4},
  {"id":"5002","Product_Name":"Degreaser","Category":null,"Unit_Price":0,"Quantity_per_SKU":""}
]}`

func TestSearchProducts(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, rawProducts)
	})

	products, err := client.SearchProducts(context.Background(), "T1", crm.SchemeZohoOAuth)
	require.NoError(t, err)
	require.Len(t, products, 2)

	call := (*calls)[0]
	require.Equal(t, "/crm/v2/Products/search", call.path)
	require.Equal(t, "Zoho-oauthtoken T1", call.auth)
	require.Equal(t, crm.ProductCriteria, call.query.Get("criteria"))
	require.Contains(t, call.query.Get("fields"), "Product_Name")

	out, err := json.Marshal(products)
	require.NoError(t, err)
	require.JSONEq(t, `[
	  {"id":"5001","name":"Acid Cleaner","category":"Cleaners","description":null,"productCode":"AC-1","price":12.5,"uom":"Gallon","qty":4},
	  {"id":"5002","name":"Degreaser","category":null,"description":null,"productCode":null,"price":null,"uom":null,"qty":null}
	]`, string(out))
}

func TestSearchProducts_NoContent(t *testing.T) {
	client, _ := newCRM(t, func(w http.ResponseWriter, s seen) {
		w.WriteHeader(http.StatusNoContent)
	})

	products, err := client.SearchProducts(context.Background(), "T1", crm.SchemeZohoOAuth)
	require.NoError(t, err)
	require.Empty(t, products)
	require.NotNil(t, products)
}

func TestSearchProducts_RetriedAfterRefresh(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		if s.auth == "Zoho-oauthtoken T1" {
			respond(w, http.StatusUnauthorized, `{"code":"INVALID_TOKEN"}`)
			return
		}
		respond(w, http.StatusOK, rawProducts)
	})

	refreshes := 0
	refresh := func(ctx context.Context) (string, bool) {
		refreshes++
		return "T2", true
	}
	session := proxy.NewMemorySession("T1")

	products, err := proxy.WithAuthRetry(context.Background(), session, refresh, func(ctx context.Context, token string) ([]crm.Product, error) {
		return client.SearchProducts(ctx, token, crm.SchemeZohoOAuth)
	})
	require.NoError(t, err)
	require.Equal(t, 1, refreshes)
	require.Len(t, *calls, 2)
	require.Equal(t, "T2", session.AccessToken())

	var raw struct {
		Data []struct {
			ID          string `json:"id"`
			ProductName string `json:"Product_Name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(rawProducts), &raw))
	require.Len(t, products, len(raw.Data))
	for i, p := range products {
		require.Equal(t, raw.Data[i].ID, p.ID)
		require.Equal(t, raw.Data[i].ProductName, p.Name)
	}
}

func TestSearchContacts(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[
		  {"id":"c1","Full_Name":"Ada Lovelace","Email":"ada@example.com","Phone":null,"Account_Name":{"id":"A1","name":"Analytical"},"Lead":null}
		]}`)
	})

	contacts, err := client.SearchContacts(context.Background(), "T1", crm.SchemeZohoOAuth, crm.ContactFilter{AccountID: "A1", LeadID: "L1"})
	require.NoError(t, err)
	require.Equal(t, "/crm/v2/Contacts/search", (*calls)[0].path)
	require.Equal(t, "(Account_Name:equals:A1)", (*calls)[0].query.Get("criteria"))
	require.Equal(t, "id,Full_Name,Email,Phone,Account_Name,Lead", (*calls)[0].query.Get("fields"))

	out, err := json.Marshal(contacts)
	require.NoError(t, err)
	require.JSONEq(t, `[{"id":"c1","name":"Ada Lovelace","email":"ada@example.com","phone":null,"accountId":"A1","accountName":"Analytical","leadId":null}]`, string(out))
}

func TestSearchContacts_ByLead(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[]}`)
	})

	_, err := client.SearchContacts(context.Background(), "T1", crm.SchemeZohoOAuth, crm.ContactFilter{LeadID: "L1"})
	require.NoError(t, err)
	require.Equal(t, "(Lead:equals:L1)", (*calls)[0].query.Get("criteria"))
}

func TestSearchContacts_RequiresFilter(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {})

	_, err := client.SearchContacts(context.Background(), "T1", crm.SchemeZohoOAuth, crm.ContactFilter{})
	require.ErrorIs(t, err, errors.ErrInvalidRequest)
	require.Empty(t, *calls)
}

func TestUpstreamErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusBadRequest, `{"code":"INVALID_QUERY"}`)
	})

	_, err := client.SearchProducts(context.Background(), "T1", crm.SchemeZohoOAuth)
	var upstream *errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusBadRequest, upstream.Status)
	require.False(t, upstream.IsAuthorizationFailure())
	require.JSONEq(t, `{"code":"INVALID_QUERY"}`, string(upstream.Body))
}

func TestListSampleRequestAttachments(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[
		  {"id":"att1","File_Name":"Spec Sheet.pdf","$file_id":"f1","$se_module":"producttab__Sample_Requests","Parent_Id":{"id":"sr1"},"Created_By":{"id":"u1"}},
		  {"id":"att2","$file_id":"f2","$se_module":"producttab__Sample_Requests"}
		]}`)
	})

	attachments, err := client.ListSampleRequestAttachments(context.Background(), "T1", crm.SchemeZohoOAuth, "sr1")
	require.NoError(t, err)
	require.Equal(t, "/crm/v2/producttab__Sample_Requests/sr1/Attachments", (*calls)[0].path)
	require.Equal(t, "true", (*calls)[0].query.Get("include_download_url"))

	require.Len(t, attachments, 2)
	require.Equal(t, "att1", attachments[0].ID)
	require.Equal(t, "Spec Sheet.pdf", attachments[0].Name)

	u, err := url.Parse(attachments[0].URL)
	require.NoError(t, err)
	require.Equal(t, "/crm/org853227453/ViewAttachment", u.Path)
	q := u.Query()
	require.Equal(t, "f1", q.Get("fileId"))
	require.Equal(t, "producttab__Sample_Requests", q.Get("module"))
	require.Equal(t, "sr1", q.Get("parentId"))
	require.Equal(t, "u1", q.Get("creatorId"))
	require.Equal(t, "att1", q.Get("id"))
	require.Equal(t, "Spec Sheet.pdf", q.Get("name"))
	require.Equal(t, "pdfViewPlugin", q.Get("downLoadMode"))

	u, err = url.Parse(attachments[1].URL)
	require.NoError(t, err)
	require.Equal(t, "Attachment.pdf", u.Query().Get("name"))
}

func TestUploadAccountAttachment(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[{"code":"SUCCESS","details":{"id":"att-9"},"status":"success"}]}`)
	})

	res, err := client.UploadAccountAttachment(context.Background(), "T1", crm.SchemeZohoOAuth, crm.V8, "A1", crm.File{
		Name:        "list.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-1.3"),
	})
	require.NoError(t, err)
	require.Equal(t, "att-9", res.AttachmentID)

	call := (*calls)[0]
	require.Equal(t, http.MethodPost, call.method)
	require.Equal(t, "/crm/v8/Accounts/A1/Attachments", call.path)

	mediaType, params, err := mime.ParseMediaType(call.ctype)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	part, err := multipart.NewReader(bytes.NewReader(call.body), params["boundary"]).NextPart()
	require.NoError(t, err)
	require.Equal(t, "file", part.FormName())
	require.Equal(t, "list.pdf", part.FileName())
	content, err := io.ReadAll(part)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.3", string(content))
}

func TestUploadAccountAttachment_TopLevelID(t *testing.T) {
	client, _ := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[{"id":"att-7"}]}`)
	})

	res, err := client.UploadAccountAttachment(context.Background(), "T1", crm.SchemeZohoOAuth, crm.V2, "A1", crm.File{Name: "x.pdf"})
	require.NoError(t, err)
	require.Equal(t, "att-7", res.AttachmentID)
}

func TestGetEntityContact(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[{"id":"L1","Email":"buyer@example.com","Phone":"555"}]}`)
	})

	contact, err := client.GetEntityContact(context.Background(), "T1", crm.SchemeBearer, crm.EntityRef{Module: "Leads", ID: "L1"})
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", contact.Email)
	require.Equal(t, "555", contact.Phone)

	call := (*calls)[0]
	require.Equal(t, "/crm/v7/Leads/L1", call.path)
	require.Equal(t, "Email,Phone,Name", call.query.Get("fields"))
	require.Equal(t, "Bearer T1", call.auth)
}

func TestGetEntityContact_Empty(t *testing.T) {
	client, _ := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[]}`)
	})

	_, err := client.GetEntityContact(context.Background(), "T1", crm.SchemeBearer, crm.EntityRef{Module: "Accounts", ID: "A1"})
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestUpdateSampleRequest(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"data":[{"code":"SUCCESS"}]}`)
	})

	label := "https://labels.example.com/1.pdf"
	_, err := client.UpdateSampleRequest(context.Background(), "T1", crm.SchemeBearer, crm.TrackingUpdate{
		ID:             "sr1",
		TrackingNumber: "7949",
		ShipDate:       "2024-05-01",
		ShippingMethod: "FedEx Large Box",
		LabelURL:       &label,
	})
	require.NoError(t, err)

	call := (*calls)[0]
	require.Equal(t, http.MethodPatch, call.method)
	require.Equal(t, "/crm/v7/producttab__Sample_Requests/sr1", call.path)
	require.Equal(t, "Bearer T1", call.auth)
	require.JSONEq(t, `{"data":[{
	  "id":"sr1",
	  "producttab__FedEx_tracking_no":"7949",
	  "producttab__Ship_Date":"2024-05-01",
	  "FedEx_shipping_options":"FedEx Large Box",
	  "FedEx_Tracking_Label_Url":"https://labels.example.com/1.pdf"
	}]}`, string(call.body))
}

func TestExecuteFunction(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"code":"success"}`)
	})

	resp, err := client.ExecuteFunction(context.Background(), "T1", crm.SchemeZohoOAuth, "sendproductemails", map[string]string{"entityId": "A1"})
	require.NoError(t, err)
	require.IsType(t, json.RawMessage{}, resp)

	call := (*calls)[0]
	require.Equal(t, "/crm/v2/functions/sendproductemails/actions/execute", call.path)
	form, err := url.ParseQuery(string(call.body))
	require.NoError(t, err)
	require.Equal(t, "oauth", form.Get("auth_type"))
	require.JSONEq(t, `{"entityId":"A1"}`, form.Get("requestData"))
}

func TestExecuteFunction_TextResponse(t *testing.T) {
	client, _ := newCRM(t, func(w http.ResponseWriter, s seen) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "queued\n")
	})

	resp, err := client.ExecuteFunction(context.Background(), "T1", crm.SchemeZohoOAuth, "sendproductemails", nil)
	require.NoError(t, err)
	require.Equal(t, "queued", resp)
}

func TestListInventoryItems(t *testing.T) {
	client, calls := newCRM(t, func(w http.ResponseWriter, s seen) {
		respond(w, http.StatusOK, `{"items":[{"item_id":"1"}]}`)
	})

	items, err := client.ListInventoryItems(context.Background(), "T1", crm.SchemeZohoOAuth)
	require.NoError(t, err)
	require.JSONEq(t, `{"items":[{"item_id":"1"}]}`, string(items))
	require.Equal(t, "/api/v1/items", (*calls)[0].path)
	require.Equal(t, "inv-org", (*calls)[0].query.Get("organization_id"))
}

