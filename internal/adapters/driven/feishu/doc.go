// Package feishu implements the remote collection ports against the Feishu
// open platform.
//
// Two collections are provided. DocumentCollection addresses the top-level
// blocks of a docx document and its drive comments. TableCollection
// addresses the records of a bitable table, keeping a live order so that
// positional deletes behave like the document batch delete.
//
// All calls share one Client, which authenticates with a tenant access
// token obtained from the app credentials, paces requests with a token
// bucket and maps API failures onto domain errors.
package feishu
