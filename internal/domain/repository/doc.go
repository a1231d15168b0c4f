// Package repository define las entidades del servidor de autorización y los
// contratos de persistencia que consume el engine de autenticación.
//
// Las implementaciones viven en internal/store/{pg,memory,kv}. El engine sólo
// conoce estas interfaces; nunca un driver concreto.
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - tenantID se pasa explícito en todo lo que es tenant-scoped.
//   - Get* devuelve ErrNotFound cuando no hay fila.
//   - Remove de registros de un solo uso (Ticket, OTP, Code) es atómico:
//     la segunda llamada sobre el mismo id devuelve ErrNotFound.
//   - La expiración (expires_at) se chequea al leer, no la aplica el adapter.
package repository
