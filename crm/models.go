package crm

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-share-portal/internal/utils"
)

const defaultAttachmentName = "Attachment.pdf"

type recordList[T any] struct {
	Data []T `json:"data"`
}

type lookup struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type rawContact struct {
	ID          string  `json:"id"`
	FullName    string  `json:"Full_Name"`
	Email       *string `json:"Email"`
	Phone       *string `json:"Phone"`
	AccountName *lookup `json:"Account_Name"`
	Lead        *lookup `json:"Lead"`
}

// Contact is a CRM contact as returned to the portal UI.
type Contact struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	AccountID   *string `json:"accountId"`
	AccountName *string `json:"accountName"`
	LeadID      *string `json:"leadId"`
}

type rawProduct struct {
	ID             string   `json:"id"`
	ProductName    string   `json:"Product_Name"`
	Category       *string  `json:"Category"`
	Description    *string  `json:"Description"`
	ProductCode    *string  `json:"Product_Code"`
	UnitPrice      *float64 `json:"Unit_Price"`
	UoM            *string  `json:"UoM"`
	QuantityPerSKU any      `json:"Quantity_per_SKU"`
}

// Product is a sellable product as shown on the product list.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	ProductCode *string  `json:"productCode"`
	Price       *float64 `json:"price"`
	UoM         *string  `json:"uom"`
	Qty         any      `json:"qty"`
}

type rawAttachment struct {
	ID       string  `json:"id"`
	FileName string  `json:"File_Name"`
	FileID   string  `json:"$file_id"`
	Module   string  `json:"$se_module"`
	ParentID *lookup `json:"Parent_Id"`
	Creator  *lookup `json:"Created_By"`
}

// Attachment links to the CRM's in-browser preview of a file.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EntityContact holds the contact fields of a lead or account.
type EntityContact struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"Name,omitempty"`
	Email string `json:"Email,omitempty"`
	Phone string `json:"Phone,omitempty"`
}

// nonEmpty maps empty strings to nil.
func nonEmpty(s *string) *string {
	if utils.Value(s) == "" {
		return nil
	}
	return s
}

func lookupID(l *lookup) *string {
	if l == nil || l.ID == "" {
		return nil
	}
	return utils.Ptr(l.ID)
}

func lookupName(l *lookup) *string {
	if l == nil || l.Name == "" {
		return nil
	}
	return utils.Ptr(l.Name)
}

func normalizeContacts(raw []rawContact) []Contact {
	contacts := make([]Contact, 0, len(raw))
	for _, c := range raw {
		contacts = append(contacts, Contact{
			ID:          c.ID,
			Name:        c.FullName,
			Email:       nonEmpty(c.Email),
			Phone:       nonEmpty(c.Phone),
			AccountID:   lookupID(c.AccountName),
			AccountName: lookupName(c.AccountName),
			LeadID:      lookupID(c.Lead),
		})
	}
	return contacts
}

func normalizeProducts(raw []rawProduct) []Product {
	products := make([]Product, 0, len(raw))
	for _, p := range raw {
		product := Product{
			ID:          p.ID,
			Name:        p.ProductName,
			Category:    nonEmpty(p.Category),
			Description: nonEmpty(p.Description),
			ProductCode: nonEmpty(p.ProductCode),
			UoM:         nonEmpty(p.UoM),
			Qty:         emptyToNil(p.QuantityPerSKU),
		}
		if utils.Value(p.UnitPrice) != 0 {
			product.Price = p.UnitPrice
		}
		products = append(products, product)
	}
	return products
}

func emptyToNil(v any) any {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil
		}
	case float64:
		if t == 0 {
			return nil
		}
	}
	return v
}

func (c *Client) normalizeAttachments(raw []rawAttachment) []Attachment {
	attachments := make([]Attachment, 0, len(raw))
	for _, a := range raw {
		attachments = append(attachments, Attachment{
			ID:   a.ID,
			Name: a.FileName,
			URL:  c.previewURL(a),
		})
	}
	return attachments
}

func (c *Client) previewURL(a rawAttachment) string {
	name := a.FileName
	if name == "" {
		name = defaultAttachmentName
	}
	var parentID, creatorID string
	if a.ParentID != nil {
		parentID = a.ParentID.ID
	}
	if a.Creator != nil {
		creatorID = a.Creator.ID
	}
	return fmt.Sprintf("%s/crm/org%s/ViewAttachment?fileId=%s&module=%s&parentId=%s&creatorId=%s&id=%s&name=%s&downLoadMode=pdfViewPlugin&attach=undefined",
		c.crmURL, c.crmOrgID,
		url.QueryEscape(a.FileID), url.QueryEscape(a.Module), url.QueryEscape(parentID),
		url.QueryEscape(creatorID), url.QueryEscape(a.ID), strings.ReplaceAll(url.QueryEscape(name), "+", "%20"))
}
